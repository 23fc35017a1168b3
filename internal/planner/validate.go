package planner

import (
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/platform/metrics"
	"fmt"
	"strconv"
	"sync"
)

// SanitizeRangeInput accepts the empty string or ASCII digits whose value
// stays below domain.MaxRangeCeiling.
func SanitizeRangeInput(text string) bool {
	if text == "" {
		return true
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	_, ok := parseRange(text)
	return ok
}

func parseRange(text string) (uint32, bool) {
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil || v >= domain.MaxRangeCeiling {
		return 0, false
	}
	return uint32(v), true
}

type RangeField string

const (
	FieldCurrent RangeField = "current"
	FieldMax     RangeField = "max"
)

func ParseRangeField(s string) (RangeField, error) {
	switch RangeField(s) {
	case FieldCurrent, FieldMax:
		return RangeField(s), nil
	default:
		return "", fmt.Errorf("unknown range field %q", s)
	}
}

// FormValues is a copy of the trip form.
type FormValues struct {
	Mode         domain.TransportMode `json:"mode"`
	Objective    domain.Objective     `json:"objective"`
	CurrentRange string               `json:"current_range"`
	MaxRange     string               `json:"max_range"`
}

// RangeForm holds mode, objective and the raw range text. A rejected edit
// leaves the stored text unchanged.
type RangeForm struct {
	notify Notifier

	mu        sync.Mutex
	mode      domain.TransportMode
	objective domain.Objective
	current   string
	max       string
}

func NewRangeForm(notify Notifier) *RangeForm {
	return &RangeForm{
		notify:    notify,
		mode:      domain.DefaultMode,
		objective: domain.DefaultObjective,
	}
}

func (f *RangeForm) SetCurrent(text string) error {
	return f.Set(FieldCurrent, text)
}

func (f *RangeForm) SetMax(text string) error {
	return f.Set(FieldMax, text)
}

// Set applies an edit to one range field. With both fields filled, an edit
// to either side that would leave current above max is rejected.
func (f *RangeForm) Set(field RangeField, text string) error {
	if !SanitizeRangeInput(text) {
		return f.reject(field, ErrInvalidRange)
	}

	f.mu.Lock()
	current, max := f.current, f.max
	switch field {
	case FieldCurrent:
		current = text
	case FieldMax:
		max = text
	default:
		f.mu.Unlock()
		return fmt.Errorf("set range: unknown field %q", field)
	}

	if current != "" && max != "" {
		c, _ := parseRange(current)
		m, _ := parseRange(max)
		if c > m {
			f.mu.Unlock()
			return f.reject(field, ErrRangeOrder)
		}
	}

	f.current, f.max = current, max
	f.mu.Unlock()
	return nil
}

func (f *RangeForm) reject(field RangeField, err error) error {
	metrics.ValidationRejections.WithLabelValues(string(field)).Inc()
	f.notify.Notify(LevelWarn, err.Error())
	return fmt.Errorf("set %s range: %w", field, err)
}

func (f *RangeForm) SetMode(m domain.TransportMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = m
}

func (f *RangeForm) SetObjective(o domain.Objective) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objective = o
}

func (f *RangeForm) Values() FormValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormValues{
		Mode:         f.mode,
		Objective:    f.objective,
		CurrentRange: f.current,
		MaxRange:     f.max,
	}
}

// RangeSpec converts the stored text. Both fields must be filled.
func (v FormValues) RangeSpec() (domain.RangeSpec, error) {
	if v.CurrentRange == "" || v.MaxRange == "" {
		return domain.RangeSpec{}, ErrRangeMissing
	}
	c, ok := parseRange(v.CurrentRange)
	if !ok {
		return domain.RangeSpec{}, ErrInvalidRange
	}
	m, ok := parseRange(v.MaxRange)
	if !ok {
		return domain.RangeSpec{}, ErrInvalidRange
	}
	spec := domain.RangeSpec{Current: c, Max: m}
	if c > m {
		return spec, ErrRangeOrder
	}
	return spec, nil
}

// Clear restores defaults and empty range fields.
func (f *RangeForm) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = domain.DefaultMode
	f.objective = domain.DefaultObjective
	f.current = ""
	f.max = ""
}
