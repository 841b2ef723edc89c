package models

import "github.com/uptrace/bun"

// Race represents a horse race event.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:rc"`

	RaceID    string  `bun:"race_id,pk" json:"raceID"`
	CourseID  string  `bun:"course_id,notnull" json:"courseID"`
	Date      string  `bun:"date,notnull,type:date" json:"date"`
	OffTime   string  `bun:"off_time,notnull" json:"offTime"`
	RaceName  string  `bun:"race_name,notnull" json:"raceName"`
	Class     *string `bun:"class" json:"class,omitempty"`
	DistanceF float64 `bun:"distance_f,notnull" json:"distanceF"`
	Going     *string `bun:"going" json:"going,omitempty"`
	RaceType  *string `bun:"race_type" json:"raceType,omitempty"`
	Completed bool    `bun:"completed,notnull,default:false" json:"completed"`

	Course *Course `bun:"rel:belongs-to,join:course_id=course_id" json:"-"`
}
