package provider

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// LegacyPrefix is prepended to every id read from the legacy database so
// they can never collide with provider ids.
const LegacyPrefix = "rp_"

const legacyQuery = `
SELECT r.raceID, r.courseID, c.course, r.date, r.time, r.class, r.distance, r.going,
       res.horseID, h.horse, res.jockey, res.trainer, res.number, res.headgear,
       res.price, res.officialRat, res.weightCarried, res.placed, res.distBehindWinner
FROM races r
JOIN courses c ON c.courseID = r.courseID
JOIN results res ON res.raceID = r.raceID
JOIN horses h ON h.horseID = res.horseID
WHERE r.date BETWEEN ? AND ?
ORDER BY r.date, r.time, r.raceID, res.number`

// LegacySource replays races and results from the old MySQL rpData
// database. Jockeys and trainers there are names only, so they resolve to
// fingerprints.
type LegacySource struct {
	db *sql.DB
}

// OpenLegacy connects to the MySQL database at dsn, e.g.
// user:pass@tcp(host:3306)/rpData?parseTime=true.
func OpenLegacy(ctx context.Context, dsn string) (*LegacySource, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(4)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return &LegacySource{db: db}, nil
}

// Close closes the connection pool.
func (s *LegacySource) Close() error { return s.db.Close() }

// legacyRow is one joined result row.
type legacyRow struct {
	raceID, courseID int
	course           string
	date             time.Time
	offTime          string
	class            sql.NullString
	distance         float64
	going            string
	horseID          int
	horse            string
	jockey, trainer  string
	number           int
	headgear         sql.NullString
	price            string
	officialRat      sql.NullInt64
	weightCarried    int
	placed           string
	distBehindWinner sql.NullFloat64
}

// Results implements Source for races dated from..to inclusive.
func (s *LegacySource) Results(ctx context.Context, from, to string) ([]Race, error) {
	rows, err := s.db.QueryContext(ctx, legacyQuery, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []legacyRow
	for rows.Next() {
		var r legacyRow
		if err := rows.Scan(
			&r.raceID, &r.courseID, &r.course, &r.date, &r.offTime, &r.class, &r.distance, &r.going,
			&r.horseID, &r.horse, &r.jockey, &r.trainer, &r.number, &r.headgear,
			&r.price, &r.officialRat, &r.weightCarried, &r.placed, &r.distBehindWinner,
		); err != nil {
			return nil, err
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupLegacy(all), nil
}

// groupLegacy folds joined rows, already ordered by race, into races.
func groupLegacy(rows []legacyRow) []Race {
	var out []Race
	for _, r := range rows {
		id := LegacyPrefix + strconv.Itoa(r.raceID)
		if len(out) == 0 || out[len(out)-1].RaceID != id {
			out = append(out, Race{
				RaceID:   id,
				CourseID: LegacyPrefix + strconv.Itoa(r.courseID),
				Course:   r.course,
				Date:     r.date.Format(time.DateOnly),
				OffTime:  r.offTime,
				Class:    r.class.String,
				DistF:    strconv.FormatFloat(r.distance, 'f', -1, 64) + "f",
				Going:    r.going,
			})
		}
		rec := Runner{
			HorseID:  LegacyPrefix + strconv.Itoa(r.horseID),
			Horse:    r.horse,
			Jockey:   r.jockey,
			Trainer:  r.trainer,
			Number:   strconv.Itoa(r.number),
			Headgear: r.headgear.String,
			SP:       r.price,
			Lbs:      strconv.Itoa(r.weightCarried),
			Position: r.placed,
		}
		if r.officialRat.Valid {
			rec.OR = strconv.FormatInt(r.officialRat.Int64, 10)
		}
		if r.distBehindWinner.Valid {
			rec.Btn = strconv.FormatFloat(r.distBehindWinner.Float64, 'f', -1, 64)
		}
		cur := &out[len(out)-1]
		cur.Runners = append(cur.Runners, rec)
	}
	return out
}
