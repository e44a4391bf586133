// Package wizard holds the five-step transportation request submission flow.
// It is pure state: persistence of drafts and uploads lives in the service layer.
package wizard

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/transport-request-api/internal/validation"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

// StepCount is the number of wizard steps.
const StepCount = 5

// SignatureDateLayout is the stored shape of the signature date.
const SignatureDateLayout = "2006-01-02"

// StepTitles names each step, index 0 is step 1.
var StepTitles = [StepCount]string{
	"Student Information",
	"Parent/Guardian Information",
	"Transportation Details",
	"Health & Emergency Information",
	"Review & Submit",
}

var validate = validation.New()

var dnrFields = []string{"DNRDocumentation", "DNRLegalAcknowledgment", "DNRSignature"}

// Wizard is the state of one in-progress submission.
type Wizard struct {
	Step          int               `json:"step"`
	Form          Form              `json:"form"`
	DNRDialogOpen bool              `json:"dnrDialogOpen"`
	Errors        map[string]string `json:"errors,omitempty"`
}

// New starts a wizard at step 1.
func New() *Wizard {
	return &Wizard{Step: 1}
}

// stepFields returns the struct fields validated on step. Conditional fields
// are only included when their toggle is set.
func stepFields(step int, f Form) []string {
	switch step {
	case 1:
		return []string{"StudentFirstName", "StudentLastName", "StudentID", "School", "Grade", "SchoolYear", "StreetAddress", "City", "State", "ZipCode"}
	case 2:
		fields := []string{"Parent1FirstName", "Parent1LastName", "Parent1Phone", "Parent1Email", "Parent1Relationship"}
		if f.HasGuardian2 {
			fields = append(fields, "Parent2Phone", "Parent2Email")
		}
		return fields
	case 3:
		return []string{"PickupTime", "PickupLocation", "DropOffTime", "DropOffLocation"}
	case 4:
		fields := []string{"EmergencyContact1Name", "EmergencyContact1Phone", "EmergencyContact1Relationship", "EmergencyContact2Phone", "VestSize"}
		if f.HasCaretaker {
			fields = append(fields, "CaretakerPhone")
		}
		if f.DNR {
			fields = append(fields, dnrFields...)
		}
		return fields
	case 5:
		return []string{"ParentalConsent", "PolicyAgreement", "DigitalSignature", "SignatureDate", "AdditionalComments"}
	}
	return nil
}

// ValidateStep returns field errors for step, or nil when it passes.
func ValidateStep(f Form, step int) map[string]string {
	fields := stepFields(step, f)
	if len(fields) == 0 {
		return nil
	}
	return check(f, fields)
}

func check(f Form, fields []string) map[string]string {
	if err := validate.StructPartial(f, fields...); err != nil {
		if msgs := validation.Messages(err, messages); len(msgs) > 0 {
			return msgs
		}
		return map[string]string{"form": err.Error()}
	}
	return nil
}

func stepError(step int, errs map[string]string) error {
	return appErrors.WithDetails(
		appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is incomplete", StepTitles[step-1])),
		errs,
	)
}

// Next advances one step when the current step validates.
func (w *Wizard) Next() error {
	if errs := ValidateStep(w.Form, w.Step); errs != nil {
		w.Errors = errs
		return stepError(w.Step, errs)
	}
	w.Errors = nil
	if w.Step < StepCount {
		w.Step++
	}
	return nil
}

// Back moves one step back without validating.
func (w *Wizard) Back() {
	w.Errors = nil
	if w.Step > 1 {
		w.Step--
	}
}

// GoTo jumps to target. Moving backwards is free; moving forwards validates
// every step in between and stops on the first one that fails.
func (w *Wizard) GoTo(target int) error {
	if target < 1 || target > StepCount {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("step must be between 1 and %d", StepCount))
	}
	if target <= w.Step {
		w.Step = target
		w.Errors = nil
		return nil
	}
	for step := w.Step; step < target; step++ {
		if errs := ValidateStep(w.Form, step); errs != nil {
			w.Step = step
			w.Errors = errs
			return stepError(step, errs)
		}
	}
	w.Step = target
	w.Errors = nil
	return nil
}

// Apply merges a partial JSON form into the wizard. Phone fields are
// reformatted, ticking DNR opens the confirmation dialog and unticking it
// clears the DNR fields.
func (w *Wizard) Apply(patch []byte) error {
	next := w.Form
	next.MedicalDevices = append([]string(nil), w.Form.MedicalDevices...)
	next.MedicalAmenities = append([]string(nil), w.Form.MedicalAmenities...)
	next.RequiredDocuments = append([]string(nil), w.Form.RequiredDocuments...)
	next.SupportingDocuments = append([]string(nil), w.Form.SupportingDocuments...)
	if err := json.Unmarshal(patch, &next); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid form payload")
	}

	for _, phone := range next.Phones() {
		*phone = FormatPhone(*phone)
	}
	for _, device := range next.MedicalDevices {
		if device != "" && device != "None" {
			next.HasMedicalNeeds = true
			next.RequiresMedicalSupport = true
			break
		}
	}

	switch {
	case next.DNR && !w.Form.DNR:
		w.DNRDialogOpen = true
	case !next.DNR && w.Form.DNR:
		clearDNR(&next)
		w.DNRDialogOpen = false
	}

	w.Form = next
	return nil
}

// SetDNR toggles the DNR flag. Turning it on opens the confirmation dialog,
// turning it off discards the DNR fields.
func (w *Wizard) SetDNR(on bool) {
	switch {
	case on && !w.Form.DNR:
		w.Form.DNR = true
		w.DNRDialogOpen = true
	case !on && w.Form.DNR:
		w.CancelDNR()
	}
}

// ConfirmDNR closes the DNR dialog once documentation, acknowledgment and signature are present.
func (w *Wizard) ConfirmDNR() error {
	if errs := check(w.Form, dnrFields); errs != nil {
		w.Errors = errs
		return appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "Please complete all required fields for DNR documentation"),
			errs,
		)
	}
	w.DNRDialogOpen = false
	w.Errors = nil
	return nil
}

// CancelDNR reverts the DNR flag and clears everything collected for it.
func (w *Wizard) CancelDNR() {
	clearDNR(&w.Form)
	w.DNRDialogOpen = false
}

func clearDNR(f *Form) {
	f.DNR = false
	f.DNRDocumentation = ""
	f.DNRLegalAcknowledgment = false
	f.DNRSignature = ""
}

// Submit validates every step and returns the form ready to assemble. The
// signature date defaults to today. On failure the wizard moves to the first
// failing step.
func (w *Wizard) Submit(now time.Time) (Form, error) {
	if w.Form.SignatureDate == "" {
		w.Form.SignatureDate = now.Format(SignatureDateLayout)
	}
	for step := 1; step <= StepCount; step++ {
		if errs := ValidateStep(w.Form, step); errs != nil {
			w.Step = step
			w.Errors = errs
			return Form{}, stepError(step, errs)
		}
	}
	w.Errors = nil
	return w.Form, nil
}
