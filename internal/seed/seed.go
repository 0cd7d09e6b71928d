// Package seed loads bootstrap data from a YAML fixture file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type Fixtures struct {
	Users     []UserFixture      `yaml:"users"`
	Events    []EventFixture     `yaml:"events"`
	Trainings []EventFixture     `yaml:"trainings"`
	Equipment []EquipmentFixture `yaml:"equipment"`
	Policies  []PolicyFixture    `yaml:"policies"`
}

type UserFixture struct {
	Email       string `yaml:"email"`
	Name        string `yaml:"name"`
	Phone       string `yaml:"phone"`
	Role        string `yaml:"role"`
	Password    string `yaml:"password"`
	BadgeNumber string `yaml:"badge_number"`
}

// EventFixture serves both events and trainings. Start is absolute (RFC 3339) or
// InHours relative to the time of seeding.
type EventFixture struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Location    string    `yaml:"location"`
	Start       time.Time `yaml:"start"`
	InHours     int       `yaml:"in_hours"`
	Hours       int       `yaml:"hours"`
	Capacity    int       `yaml:"capacity"`
	Required    bool      `yaml:"required"`
}

type EquipmentFixture struct {
	Name         string `yaml:"name"`
	SerialNumber string `yaml:"serial_number"`
	Category     string `yaml:"category"`
	Condition    string `yaml:"condition"`
}

type PolicyFixture struct {
	Title         string `yaml:"title"`
	Body          string `yaml:"body"`
	AcknowledgeIn int    `yaml:"acknowledge_in_days"`
}

// Result counts rows created; existing rows are skipped.
type Result struct {
	Users, Events, Trainings, Equipment, Policies int
}

// Parse decodes fixtures, rejecting unknown fields.
func Parse(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixtures
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, u := range f.Users {
		switch u.Role {
		case "":
			f.Users[i].Role = domain.RoleMember
		case domain.RoleAdmin, domain.RoleMember, domain.RoleGuest:
		default:
			return nil, fmt.Errorf("user %s: unknown role %q", u.Email, u.Role)
		}
		if u.Email == "" {
			return nil, fmt.Errorf("user %d: email is required", i)
		}
	}
	return &f, nil
}

func Load(path string) (*Fixtures, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Parse(fh)
}

// Apply inserts the fixtures. Users are matched by email and equipment by serial number,
// so running it twice creates nothing new for those. Events, trainings and policies are
// matched by title.
func Apply(ctx context.Context, db *gorm.DB, f *Fixtures, now time.Time, log *zap.Logger) (Result, error) {
	var res Result
	users := repository.NewUserRepository(db)
	for _, uf := range f.Users {
		if _, err := users.GetByEmail(ctx, uf.Email); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return res, err
		}
		u := &models.User{Email: uf.Email, Name: uf.Name, Phone: uf.Phone, Role: uf.Role, Status: domain.UserStatusActive}
		if uf.BadgeNumber != "" {
			badge := uf.BadgeNumber
			u.BadgeNumber = &badge
		}
		if uf.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(uf.Password), bcrypt.DefaultCost)
			if err != nil {
				return res, err
			}
			u.PasswordHash = string(hash)
		}
		if err := users.Create(ctx, u); err != nil {
			return res, fmt.Errorf("seed user %s: %w", uf.Email, err)
		}
		res.Users++
	}

	events := repository.NewEventRepository(db)
	for _, ef := range f.Events {
		if exists(ctx, db, &models.Event{}, ef.Title) {
			continue
		}
		start, end := ef.window(now)
		e := &models.Event{Title: ef.Title, Description: ef.Description, Location: ef.Location, StartsAt: start, EndsAt: end, Capacity: ef.Capacity, Status: domain.EventScheduled}
		if err := events.Create(ctx, e); err != nil {
			return res, fmt.Errorf("seed event %q: %w", ef.Title, err)
		}
		res.Events++
	}

	trainings := repository.NewTrainingRepository(db)
	for _, tf := range f.Trainings {
		if exists(ctx, db, &models.Training{}, tf.Title) {
			continue
		}
		start, end := tf.window(now)
		t := &models.Training{Title: tf.Title, Description: tf.Description, Location: tf.Location, StartsAt: start, EndsAt: end, Required: tf.Required}
		if err := trainings.Create(ctx, t); err != nil {
			return res, fmt.Errorf("seed training %q: %w", tf.Title, err)
		}
		res.Trainings++
	}

	items := repository.NewEquipmentRepository(db)
	for _, qf := range f.Equipment {
		err := items.Create(ctx, &models.Equipment{Name: qf.Name, SerialNumber: qf.SerialNumber, Category: qf.Category, Condition: qf.Condition, Status: domain.EquipmentAvailable})
		switch {
		case err == nil:
			res.Equipment++
		case errors.Is(err, repository.ErrConflict):
		default:
			return res, fmt.Errorf("seed equipment %s: %w", qf.SerialNumber, err)
		}
	}

	policies := repository.NewPolicyRepository(db)
	for _, pf := range f.Policies {
		if exists(ctx, db, &models.Policy{}, pf.Title) {
			continue
		}
		p := &models.Policy{Title: pf.Title, Body: pf.Body, Version: 1, EffectiveDate: now.UTC()}
		if pf.AcknowledgeIn > 0 {
			due := now.UTC().AddDate(0, 0, pf.AcknowledgeIn)
			p.AcknowledgeBy = &due
		}
		if err := policies.Create(ctx, p); err != nil {
			return res, fmt.Errorf("seed policy %q: %w", pf.Title, err)
		}
		res.Policies++
	}

	log.Info("fixtures applied",
		zap.Int("users", res.Users), zap.Int("events", res.Events), zap.Int("trainings", res.Trainings),
		zap.Int("equipment", res.Equipment), zap.Int("policies", res.Policies))
	return res, nil
}

func (ef EventFixture) window(now time.Time) (time.Time, time.Time) {
	start := ef.Start
	if start.IsZero() {
		start = now.Add(time.Duration(ef.InHours) * time.Hour)
	}
	start = start.UTC().Truncate(time.Second)
	hours := ef.Hours
	if hours <= 0 {
		hours = 2
	}
	return start, start.Add(time.Duration(hours) * time.Hour)
}

func exists(ctx context.Context, db *gorm.DB, model any, title string) bool {
	var n int64
	db.WithContext(ctx).Model(model).Where("title = ?", title).Count(&n)
	return n > 0
}
