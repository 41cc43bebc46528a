package studygroup

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/store"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "1234"

// DemoSnapshot returns the demo data set: two students, a public and a
// private group, and one scheduled session.
func DemoSnapshot(bcryptCost int) (store.Snapshot, error) {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcryptCost)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("hashing demo password: %w", err)
	}
	day := func(s string) time.Time {
		t, _ := time.Parse(domain.SessionDateLayout, s)
		return t
	}

	return store.Snapshot{
		Users: []domain.User{
			{
				ID:           "u1",
				Name:         "Ali Khan",
				Email:        "ali.khan@example.com",
				PasswordHash: string(hash),
				Department:   "Computer Science",
				Semester:     "5",
				AvatarURL:    "https://source.unsplash.com/200x200/?face,man",
				CreatedAt:    day("2025-01-01"),
			},
			{
				ID:           "u2",
				Name:         "Sara Ahmed",
				Email:        "sara.ahmed@example.com",
				PasswordHash: string(hash),
				Department:   "Software Engineering",
				Semester:     "5",
				AvatarURL:    "https://source.unsplash.com/200x200/?face,woman",
				CreatedAt:    day("2025-01-01"),
			},
		},
		Groups: []domain.Group{
			{
				ID:          "g1",
				Name:        "Data Structures Study Group",
				CourseName:  "Data Structures",
				CourseCode:  "CS201",
				Description: "Weekly DS revision, problem solving and exam prep.",
				Topics:      []string{"Trees", "Graphs", "Hashing"},
				MaxMembers:  6,
				Schedule:    "Tue 5:00 PM",
				Location:    "Library Room A",
				CreatorID:   "u1",
				CreatedAt:   day("2025-01-01"),
				Members:     []string{"u1"},
			},
			{
				ID:          "g2",
				Name:        "Operating Systems - Labs",
				CourseName:  "Operating Systems",
				CourseCode:  "CS301",
				Description: "OS lab help and study sessions.",
				Topics:      []string{"Processes", "Scheduling"},
				MaxMembers:  5,
				Schedule:    "Fri 3:00 PM",
				Location:    "Lab 3",
				IsPrivate:   true,
				CreatorID:   "u2",
				CreatedAt:   day("2025-01-05"),
				Members:     []string{"u2"},
			},
		},
		Sessions: []domain.Session{
			{
				ID:           "s1",
				GroupID:      "g1",
				Title:        "Graphs - Problem Set",
				Topic:        "Graphs",
				Date:         "2025-12-14",
				Time:         "17:00",
				DurationMins: 90,
				Agenda:       "Solve assignment problems and review concepts",
				CreatorID:    "u1",
				RSVPs:        map[string]domain.RSVPStatus{"u1": domain.RSVPAttending},
				CreatedAt:    day("2025-01-01"),
			},
		},
	}, nil
}

// Seed replaces the contents of st with the demo data set.
func Seed(st *store.Store, bcryptCost int) error {
	snap, err := DemoSnapshot(bcryptCost)
	if err != nil {
		return err
	}
	st.ImportState(snap)
	return nil
}
