package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
)

// ErrFormCancelled is returned when the user aborts the add-sample form
var ErrFormCancelled = errors.New("form cancelled")

// SampleForm collects a new sample interactively
type SampleForm struct {
	counts map[string]*string
	exists func(sampleID string) bool
	form   *huh.Form
	values sampleFormValues
}

type sampleFormValues struct {
	age                    string
	condition              string
	project                string
	response               string
	sampleID               string
	sampleType             string
	sex                    string
	subject                string
	timeFromTreatmentStart string
	treatment              string
}

// NewSampleForm creates the add-sample form. exists is used to reject
// sample ids already in the store and may be nil.
func NewSampleForm(exists func(sampleID string) bool) *SampleForm {
	sf := &SampleForm{
		counts: make(map[string]*string, len(domain.KnownPopulations)),
		exists: exists,
	}

	countFields := make([]huh.Field, 0, len(domain.KnownPopulations))
	for _, pop := range domain.KnownPopulations {
		value := new(string)
		sf.counts[pop] = value
		countFields = append(countFields, huh.NewInput().
			Title(pop).
			Placeholder("leave blank if not measured").
			Value(value).
			Validate(validateCount))
	}

	sf.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sample ID").
				Value(&sf.values.sampleID).
				Validate(sf.validateSampleID),
			huh.NewInput().Title("Project").Value(&sf.values.project),
			huh.NewInput().Title("Subject").Value(&sf.values.subject),
			huh.NewInput().Title("Condition").Value(&sf.values.condition),
			huh.NewInput().Title("Age").Value(&sf.values.age),
			huh.NewSelect[string]().
				Title("Sex").
				Options(huh.NewOptions("", "M", "F")...).
				Value(&sf.values.sex),
		),
		huh.NewGroup(
			huh.NewInput().Title("Treatment").Value(&sf.values.treatment),
			huh.NewSelect[string]().
				Title("Response").
				Options(huh.NewOptions("", domain.ResponseResponder, domain.ResponseNonResponder)...).
				Value(&sf.values.response),
			huh.NewInput().Title("Sample type").Value(&sf.values.sampleType),
			huh.NewInput().Title("Time from treatment start").Value(&sf.values.timeFromTreatmentStart),
		),
		huh.NewGroup(countFields...).Title("Cell counts"),
	)

	return sf
}

// Run shows the form and returns the collected request
func (sf *SampleForm) Run() (domain.NewSampleRequest, error) {
	if err := sf.form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			logging.Logger.Debug("Add-sample form cancelled")
			return domain.NewSampleRequest{}, ErrFormCancelled
		}
		return domain.NewSampleRequest{}, fmt.Errorf("failed to run sample form: %w", err)
	}
	return sf.request()
}

func (sf *SampleForm) validateSampleID(s string) error {
	id := strings.TrimSpace(s)
	if id == "" {
		return fmt.Errorf("sample ID required")
	}
	if sf.exists != nil && sf.exists(id) {
		return fmt.Errorf("sample %s already exists", id)
	}
	return nil
}

func validateCount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("count must be a whole number")
	}
	if n < 0 {
		return fmt.Errorf("count must not be negative")
	}
	return nil
}

func (sf *SampleForm) request() (domain.NewSampleRequest, error) {
	counts := make(map[string]int, len(sf.counts))
	for pop, value := range sf.counts {
		raw := strings.TrimSpace(*value)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.NewSampleRequest{}, fmt.Errorf("invalid count for %s: %w", pop, err)
		}
		counts[pop] = n
	}

	v := sf.values
	return domain.NewSampleRequest{
		Age:                    v.age,
		Condition:              v.condition,
		Counts:                 counts,
		Project:                v.project,
		Response:               v.response,
		SampleID:               v.sampleID,
		SampleType:             v.sampleType,
		Sex:                    v.sex,
		Subject:                v.subject,
		TimeFromTreatmentStart: v.timeFromTreatmentStart,
		Treatment:              v.treatment,
	}, nil
}
