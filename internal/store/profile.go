// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// GetProfile returns the singleton user profile, creating it with
// defaults on first use.
func (s *Store) GetProfile(ctx context.Context) (types.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT interests, skill_level, preferred_sources, daily_reading_goal,
			created, updated
		 FROM profile WHERE id = 1`)

	var (
		p          types.Profile
		interests  sql.NullString
		skillLevel string
		preferred  sql.NullString
		created    string
		updated    string
	)
	err := row.Scan(&interests, &skillLevel, &preferred, &p.DailyReadingGoal, &created, &updated)
	if err == sql.ErrNoRows {
		p = types.DefaultProfile(time.Now().UTC())
		if err := s.SaveProfile(ctx, p); err != nil {
			return types.Profile{}, err
		}
		return p, nil
	}
	if err != nil {
		return types.Profile{}, fmt.Errorf("reading profile: %w", err)
	}

	p.Interests = splitList(interests.String)
	p.SkillLevel = types.SkillLevel(skillLevel)
	for _, src := range splitList(preferred.String) {
		p.PreferredSources = append(p.PreferredSources, types.Source(src))
	}
	p.Created = parseTime(created)
	p.Updated = parseTime(updated)
	return p, nil
}

// SaveProfile writes the profile, replacing any previous version.
func (s *Store) SaveProfile(ctx context.Context, p types.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	now := time.Now().UTC()
	if p.Created.IsZero() {
		p.Created = now
	}
	p.Updated = now

	sources := make([]string, len(p.PreferredSources))
	for i, src := range p.PreferredSources {
		sources[i] = string(src)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile (id, interests, skill_level, preferred_sources,
			daily_reading_goal, created, updated)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			interests=excluded.interests, skill_level=excluded.skill_level,
			preferred_sources=excluded.preferred_sources,
			daily_reading_goal=excluded.daily_reading_goal,
			updated=excluded.updated`,
		joinList(p.Interests), string(p.SkillLevel), joinList(sources),
		p.DailyReadingGoal, formatTime(p.Created), formatTime(p.Updated),
	)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// ResetProfile restores the profile to its defaults. The profile is never
// deleted, only reset.
func (s *Store) ResetProfile(ctx context.Context) (types.Profile, error) {
	p := types.DefaultProfile(time.Now().UTC())
	if err := s.SaveProfile(ctx, p); err != nil {
		return types.Profile{}, err
	}
	return p, nil
}

func joinList(v []string) string {
	return strings.Join(v, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
