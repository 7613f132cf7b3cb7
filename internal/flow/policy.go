package flow

import (
	"time"

	"rscasurvey/internal/model"
	"rscasurvey/internal/questionbank"
)

// Band assigns a time limit to the sequence indices From..To inclusive
type Band struct {
	From  int           `mapstructure:"from"`
	To    int           `mapstructure:"to"`
	Limit time.Duration `mapstructure:"limit"`
}

// SkipRule jumps from one sequence index straight to another and shows Divider there
type SkipRule struct {
	From    int    `mapstructure:"from"`
	To      int    `mapstructure:"to"`
	Divider string `mapstructure:"divider"`
}

// StudyPolicy is the branching table of one study variant
type StudyPolicy struct {
	Checkpoints []int     `mapstructure:"checkpoints"`
	Skip        *SkipRule `mapstructure:"skip"`
}

// Studies holds a policy per study variant
type Studies struct {
	WithParsons    StudyPolicy `mapstructure:"with_parsons"`
	WithoutParsons StudyPolicy `mapstructure:"without_parsons"`
}

// Config is the timing and branching policy of the controller.
// Every table is data so a study can be retuned without touching the state machine.
type Config struct {
	TickInterval       time.Duration `mapstructure:"tick_interval"`
	ReadingDwell       time.Duration `mapstructure:"reading_dwell"`
	SettleDelay        time.Duration `mapstructure:"settle_delay"`
	SentinelQuestionID int           `mapstructure:"sentinel_question_id"`
	ShufflePrefix      int           `mapstructure:"shuffle_prefix"`
	Bands              []Band        `mapstructure:"bands"`
	DefaultLimit       time.Duration `mapstructure:"default_limit"`
	DividerMessages    []string      `mapstructure:"divider_messages"`
	Studies            Studies       `mapstructure:"studies"`
}

const demographicsDivider = "Almost done! The remaining questions ask about your background and your experience in this study."

// DefaultConfig matches the 49-question bank
func DefaultConfig() Config {
	return Config{
		TickInterval:       time.Second,
		ReadingDwell:       100 * time.Second,
		SettleDelay:        2 * time.Second,
		SentinelQuestionID: questionbank.VignetteQuestionID,
		ShufflePrefix:      23,
		Bands: []Band{
			{From: 0, To: 32, Limit: 10 * time.Second},
			{From: 33, To: 36, Limit: 80 * time.Second},
			{From: 37, To: 43, Limit: 15 * time.Second},
		},
		DefaultLimit: 70 * time.Second,
		DividerMessages: []string{
			"You have finished the first section. Take a short break, then continue to the questions about this course.",
			"Next you will put lines of code in the right order. Take your time to read each problem.",
			demographicsDivider,
		},
		Studies: Studies{
			WithParsons: StudyPolicy{Checkpoints: []int{22, 32, 36}},
			WithoutParsons: StudyPolicy{
				Checkpoints: []int{22, 32},
				Skip:        &SkipRule{From: 33, To: 37, Divider: demographicsDivider},
			},
		},
	}
}

// TimeLimit returns the countdown for the question at sequence index i
func (c Config) TimeLimit(i int) time.Duration {
	for _, b := range c.Bands {
		if i >= b.From && i <= b.To {
			return b.Limit
		}
	}
	return c.DefaultLimit
}

func (c Config) policy(study model.StudyType) StudyPolicy {
	if study == model.StudyWithoutParsons {
		return c.Studies.WithoutParsons
	}
	return c.Studies.WithParsons
}

// route is the outcome of finishing a question
type route struct {
	next        int
	showDivider bool
	divider     string
	done        bool
}

// decide picks where the flow goes after the question at index i of total.
// dividerPos is the position in DividerMessages of the next checkpoint divider;
// the returned position has moved on when a checkpoint was hit.
func (c Config) decide(study model.StudyType, i, total, dividerPos int) (route, int) {
	p := c.policy(study)
	next := i + 1
	skipped := p.Skip != nil && next == p.Skip.From
	if skipped {
		next = p.Skip.To
	}
	if next >= total {
		return route{done: true}, dividerPos
	}

	checkpoint := false
	for _, cp := range p.Checkpoints {
		if cp == i {
			checkpoint = true
			break
		}
	}

	switch {
	case checkpoint:
		msg := ""
		if dividerPos < len(c.DividerMessages) {
			msg = c.DividerMessages[dividerPos]
		}
		if skipped && p.Skip.Divider != "" {
			msg = p.Skip.Divider
		}
		return route{next: next, showDivider: true, divider: msg}, dividerPos + 1
	case skipped:
		return route{next: next, showDivider: true, divider: p.Skip.Divider}, dividerPos
	default:
		return route{next: next}, dividerPos
	}
}
