package models

// Teacher is a roster entry loaded from the options store. A teacher whose
// StudentGroup is set is also a student in that group and occupies two roles
// for collision purposes.
type Teacher struct {
	Name         string `json:"name" db:"name"`
	RussianName  string `json:"russian_name,omitempty" db:"russian_name"`
	Email        string `json:"email,omitempty" db:"email"`
	Alias        string `json:"alias,omitempty" db:"alias"`
	StudentGroup string `json:"student_group,omitempty" db:"student_group"`
}
