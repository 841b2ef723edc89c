package models

import "github.com/uptrace/bun"

// Course represents a racecourse (venue). Region is the venue's racing
// jurisdiction and has nothing to do with a horse's breeding region.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	CourseID string  `bun:"course_id,pk" json:"courseID"`
	Course   string  `bun:"course,notnull" json:"course"`
	Region   *string `bun:"region" json:"region,omitempty"`
}
