package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"rscasurvey/internal/cache"
	"rscasurvey/internal/model"
	"rscasurvey/internal/repository"
)

// ProfileService deduplicates background profiles by the hash of their demographics
type ProfileService struct {
	profileRepo repository.ProfileRepo
	statsCache  cache.StatsCache
}

// NewProfileService creates a profile service. statsCache may be nil.
func NewProfileService(profileRepo repository.ProfileRepo, statsCache cache.StatsCache) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		statsCache:  statsCache,
	}
}

// HashDemographics derives the profile identity. Ethnicity order does not matter.
func HashDemographics(d model.Demographics) (string, error) {
	canonical := normalize(d)
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func normalize(d model.Demographics) model.Demographics {
	if len(d.Ethnicity) == 0 {
		d.Ethnicity = nil
		return d
	}
	seen := make(map[string]bool, len(d.Ethnicity))
	out := make([]string, 0, len(d.Ethnicity))
	for _, e := range d.Ethnicity {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	sort.Strings(out)
	d.Ethnicity = out
	return d
}

// ApplyField coerces value for field and stores it on d
func ApplyField(d *model.Demographics, field model.ProfileField, value interface{}) error {
	switch field {
	case model.FieldAge:
		age, err := cast.ToIntE(value)
		if err != nil || age < 0 {
			return fmt.Errorf("%w: age %v", ErrInvalidAnswer, value)
		}
		d.Age = &age
	case model.FieldEthnicity:
		var list []string
		switch v := value.(type) {
		case string:
			list = []string{v}
		default:
			l, err := cast.ToStringSliceE(v)
			if err != nil {
				return fmt.Errorf("%w: ethnicity %v", ErrInvalidAnswer, value)
			}
			list = l
		}
		d.Ethnicity = normalize(model.Demographics{Ethnicity: list}).Ethnicity
	case model.FieldGender, model.FieldTransgender, model.FieldMajor:
		s, err := cast.ToStringE(value)
		if err != nil {
			return fmt.Errorf("%w: %s %v", ErrInvalidAnswer, field, value)
		}
		s = strings.TrimSpace(s)
		switch field {
		case model.FieldGender:
			d.Gender = s
		case model.FieldTransgender:
			d.Transgender = s
		default:
			d.Major = s
		}
	case model.FieldFirstGenStudent, model.FieldCSStudent:
		b, err := toYesNo(value)
		if err != nil {
			return fmt.Errorf("%w: %s %v", ErrInvalidAnswer, field, value)
		}
		if field == model.FieldCSStudent {
			d.CSStudent = &b
		} else {
			d.FirstGenStudent = &b
		}
	default:
		return fmt.Errorf("%w: unknown profile field %q", ErrInvalidAnswer, field)
	}
	return nil
}

func toYesNo(value interface{}) (bool, error) {
	if s, ok := value.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "y":
			return true, nil
		case "no", "n":
			return false, nil
		}
	}
	return cast.ToBoolE(value)
}

// Move describes a session leaving the profile it currently holds
type Move struct {
	From      *model.BackgroundProfile
	SessionID string
	// Shared is set when other sessions still hold From
	Shared bool
}

// Resolve finds or creates the profile for d.
// When move leaves a different profile, the moving session's data goes with it.
func (s *ProfileService) Resolve(ctx context.Context, d model.Demographics, move *Move) (*model.BackgroundProfile, error) {
	d = normalize(d)
	hash, err := HashDemographics(d)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demographics: %w", err)
	}

	profile, err := s.profileRepo.FindByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if profile == nil {
		profile = &model.BackgroundProfile{
			ProfileHash:          hash,
			Demographics:         d,
			TimeSpentOnQuestions: map[string]int64{},
		}
		err = s.profileRepo.Create(ctx, profile)
		if errors.Is(err, repository.ErrDuplicateProfile) {
			// Another session inserted the same demographics first
			log.Printf("[Profile] Duplicate hash %s on insert, reusing existing profile", hash[:12])
			profile, err = s.profileRepo.FindByHash(ctx, hash)
			if err == nil && profile == nil {
				err = fmt.Errorf("profile %s: %w", hash[:12], repository.ErrNotFound)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		s.invalidateStats(ctx)
	}

	if move != nil && move.From != nil && move.From.ID != profile.ID {
		if err := s.carryOver(ctx, move, profile); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// carryOver copies the recording links made by the moving session and, when
// nobody else holds the old profile, its timings. Timings on a shared profile
// cannot be told apart by session and stay where they are.
func (s *ProfileService) carryOver(ctx context.Context, move *Move, to *model.BackgroundProfile) error {
	from := move.From
	if !move.Shared {
		for key, spent := range from.TimeSpentOnQuestions {
			if _, ok := to.TimeSpentOnQuestions[key]; ok {
				continue
			}
			qid, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			if err := s.profileRepo.RecordTiming(ctx, to.ID, qid, spent); err != nil {
				return fmt.Errorf("failed to carry over timing: %w", err)
			}
		}
	}

	have := make(map[string]bool, len(to.EEGRecordings))
	for _, ref := range to.EEGRecordings {
		have[ref.RecordingID] = true
	}
	moved := false
	for _, ref := range from.EEGRecordings {
		if ref.SessionID != move.SessionID {
			continue
		}
		moved = true
		if have[ref.RecordingID] {
			continue
		}
		if err := s.profileRepo.AddRecording(ctx, to.ID, ref); err != nil {
			return fmt.Errorf("failed to carry over recording: %w", err)
		}
	}
	if moved && move.Shared {
		if err := s.profileRepo.RemoveRecordings(ctx, from.ID, move.SessionID); err != nil {
			return fmt.Errorf("failed to detach recordings from profile %s: %w", from.ID, err)
		}
	}
	return nil
}

// Get returns nil, nil when no profile has the id
func (s *ProfileService) Get(ctx context.Context, id string) (*model.BackgroundProfile, error) {
	p, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// RecordTiming stores the time spent on a demographic question
func (s *ProfileService) RecordTiming(ctx context.Context, id string, questionID int, timeSpent int64) error {
	if err := s.profileRepo.RecordTiming(ctx, id, questionID, timeSpent); err != nil {
		return fmt.Errorf("failed to record timing: %w", err)
	}
	return nil
}

// AddRecording links an EEG recording to the profile
func (s *ProfileService) AddRecording(ctx context.Context, id string, ref model.RecordingRef) error {
	if err := s.profileRepo.AddRecording(ctx, id, ref); err != nil {
		return fmt.Errorf("failed to link recording to profile: %w", err)
	}
	return nil
}

// Discard deletes a profile that no session references any more
func (s *ProfileService) Discard(ctx context.Context, id string) error {
	if err := s.profileRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	s.invalidateStats(ctx)
	return nil
}

// Stats aggregates every stored profile, served from cache when fresh
func (s *ProfileService) Stats(ctx context.Context) (*model.ProfileStats, error) {
	if s.statsCache != nil {
		cached, err := s.statsCache.Get(ctx)
		if err != nil {
			log.Printf("[Profile] Stats cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	stats := Aggregate(profiles)

	if s.statsCache != nil {
		if err := s.statsCache.Set(ctx, stats); err != nil {
			log.Printf("[Profile] Stats cache write failed: %v", err)
		}
	}
	return stats, nil
}

// Aggregate computes counts and distributions. Unanswered fields are not counted.
func Aggregate(profiles []*model.BackgroundProfile) *model.ProfileStats {
	stats := &model.ProfileStats{
		Count:                   len(profiles),
		GenderDistribution:      map[string]int{},
		EthnicityDistribution:   map[string]int{},
		MajorDistribution:       map[string]int{},
		CSStudentDistribution:   map[string]int{},
		FirstGenDistribution:    map[string]int{},
		TransgenderDistribution: map[string]int{},
	}

	ageSum, ageCount := 0, 0
	for _, p := range profiles {
		if p.Age != nil {
			ageSum += *p.Age
			ageCount++
		}
		if p.Gender != "" {
			stats.GenderDistribution[p.Gender]++
		}
		for _, e := range p.Ethnicity {
			stats.EthnicityDistribution[e]++
		}
		if p.Major != "" {
			stats.MajorDistribution[p.Major]++
		}
		if p.Transgender != "" {
			stats.TransgenderDistribution[p.Transgender]++
		}
		if p.CSStudent != nil {
			stats.CSStudentDistribution[strconv.FormatBool(*p.CSStudent)]++
		}
		if p.FirstGenStudent != nil {
			stats.FirstGenDistribution[strconv.FormatBool(*p.FirstGenStudent)]++
		}
	}
	if ageCount > 0 {
		stats.AverageAge = float64(ageSum) / float64(ageCount)
	}
	return stats
}

func (s *ProfileService) invalidateStats(ctx context.Context) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.Invalidate(ctx); err != nil {
		log.Printf("[Profile] Stats cache invalidate failed: %v", err)
	}
}
