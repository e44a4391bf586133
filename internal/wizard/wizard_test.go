package wizard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/transport-request-api/internal/models"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

func validForm() Form {
	return Form{
		StudentFirstName:              "Ada",
		StudentLastName:               "Lovelace",
		School:                        "Deep Run High School",
		Grade:                         "9",
		SchoolYear:                    "2025-2026",
		StreetAddress:                 "1 Main St",
		City:                          "Glen Allen",
		State:                         "VA",
		ZipCode:                       "23060",
		Parent1FirstName:              "Anne",
		Parent1LastName:               "Lovelace",
		Parent1Phone:                  "(804) 555-0100",
		Parent1Relationship:           "Mother",
		PickupTime:                    "07:15",
		PickupLocation:                "Home",
		DropOffTime:                   "15:30",
		DropOffLocation:               "Home",
		EmergencyContact1Name:         "Charles Babbage",
		EmergencyContact1Phone:        "(804) 555-0199",
		EmergencyContact1Relationship: "Friend",
		ParentalConsent:               true,
		PolicyAgreement:               true,
		DigitalSignature:              "Anne Lovelace",
		SignatureDate:                 "2025-08-01",
	}
}

func TestFormatPhoneIncremental(t *testing.T) {
	value := ""
	for _, d := range "1234567890" {
		value = FormatPhone(value + string(d))
	}
	assert.Equal(t, "(123) 456-7890", value)

	assert.Equal(t, "", FormatPhone(""))
	assert.Equal(t, "12", FormatPhone("12"))
	assert.Equal(t, "123", FormatPhone("1-2-3"))
	assert.Equal(t, "(123) 4", FormatPhone("1234"))
	assert.Equal(t, "(123) 456", FormatPhone("123456"))
	assert.Equal(t, "(123) 456-7", FormatPhone("1234567"))
	assert.Equal(t, "(123) 456-7890", FormatPhone("123456789012"))
	assert.Equal(t, "", FormatPhone("abc"))
}

func TestValidStepsPass(t *testing.T) {
	form := validForm()
	for step := 1; step <= StepCount; step++ {
		assert.Nil(t, ValidateStep(form, step), "step %d", step)
	}
}

func TestStepOneMessages(t *testing.T) {
	errs := ValidateStep(Form{}, 1)
	assert.Equal(t, "First name is required", errs["studentFirstName"])
	assert.Equal(t, "ZIP code is required", errs["zipCode"])
	assert.NotContains(t, errs, "studentId")

	form := validForm()
	form.Grade = "13"
	assert.Equal(t, "Select a valid grade", ValidateStep(form, 1)["grade"])
}

func TestSecondGuardianPhone(t *testing.T) {
	form := validForm()
	form.HasGuardian2 = true
	form.Parent2FirstName = "William"
	assert.Nil(t, ValidateStep(form, 2), "empty second phone is optional")

	form.Parent2Phone = "555-1234"
	errs := ValidateStep(form, 2)
	assert.Equal(t, "Phone must be in format (123) 456-7890", errs["parent2Phone"])

	form.HasGuardian2 = false
	assert.Nil(t, ValidateStep(form, 2), "second guardian ignored when toggled off")
}

func TestPrimaryPhoneMessages(t *testing.T) {
	form := validForm()
	form.Parent1Phone = ""
	assert.Equal(t, "Phone number is required", ValidateStep(form, 2)["parent1Phone"])
	form.Parent1Phone = "8045550100"
	assert.Equal(t, "Phone must be in format (123) 456-7890", ValidateStep(form, 2)["parent1Phone"])
}

func TestStepFourEmergencyAndDNR(t *testing.T) {
	form := validForm()
	form.EmergencyContact1Name = ""
	assert.Equal(t, "At least one emergency contact is required", ValidateStep(form, 4)["emergencyContact1Name"])

	form = validForm()
	form.DNR = true
	errs := ValidateStep(form, 4)
	assert.Equal(t, "DNR documentation is required", errs["dnrDocumentation"])
	assert.Equal(t, "Legal acknowledgment is required", errs["dnrLegalAcknowledgment"])
	assert.Equal(t, "Signature is required for DNR", errs["dnrSignature"])
}

func TestStepFiveMessages(t *testing.T) {
	errs := ValidateStep(Form{}, 5)
	assert.Equal(t, "Consent is required", errs["parentalConsent"])
	assert.Equal(t, "Agreement to policies is required", errs["policyAgreement"])
	assert.Equal(t, "Digital signature is required", errs["digitalSignature"])
	assert.Equal(t, "Signature date is required", errs["signatureDate"])
}

func TestNextAndBack(t *testing.T) {
	w := New()
	err := w.Next()
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, 1, w.Step)
	assert.NotEmpty(t, w.Errors)
	assert.NotEmpty(t, appErrors.FromError(err).Details)

	w.Form = validForm()
	require.NoError(t, w.Next())
	assert.Equal(t, 2, w.Step)
	assert.Nil(t, w.Errors)

	w.Back()
	w.Back()
	assert.Equal(t, 1, w.Step)
}

func TestGoToValidatesSkippedSteps(t *testing.T) {
	w := New()
	w.Form = validForm()
	w.Form.PickupTime = ""

	err := w.GoTo(5)
	require.Error(t, err)
	assert.Equal(t, 3, w.Step)
	assert.Equal(t, "Pick-up time is required", w.Errors["pickupTime"])

	require.NoError(t, w.GoTo(1))
	assert.Equal(t, 1, w.Step)

	w.Form.PickupTime = "07:00"
	require.NoError(t, w.GoTo(5))
	assert.Equal(t, 5, w.Step)

	assert.Error(t, w.GoTo(6))
}

func TestApplyFormatsPhonesAndMedicalNeeds(t *testing.T) {
	w := New()
	require.NoError(t, w.Apply([]byte(`{"parent1Phone":"8045550100","caretakerPhone":"80455","medicalDevices":["Wheelchair"]}`)))
	assert.Equal(t, "(804) 555-0100", w.Form.Parent1Phone)
	assert.Equal(t, "(804) 55", w.Form.CaretakerPhone)
	assert.True(t, w.Form.HasMedicalNeeds)
	assert.True(t, w.Form.RequiresMedicalSupport)

	w = New()
	require.NoError(t, w.Apply([]byte(`{"medicalDevices":["None"]}`)))
	assert.False(t, w.Form.HasMedicalNeeds)

	assert.Error(t, w.Apply([]byte(`{"studentFirstName":`)))
}

func TestDNRDialogFlow(t *testing.T) {
	w := New()
	w.Form = validForm()

	require.NoError(t, w.Apply([]byte(`{"dnr":true}`)))
	assert.True(t, w.DNRDialogOpen)

	err := w.ConfirmDNR()
	require.Error(t, err)
	assert.True(t, w.DNRDialogOpen)
	assert.Contains(t, appErrors.FromError(err).Details, "dnrDocumentation")

	require.NoError(t, w.Apply([]byte(`{"dnrDocumentation":"dnr/u1/doc.pdf","dnrLegalAcknowledgment":true,"dnrSignature":"Anne"}`)))
	require.NoError(t, w.ConfirmDNR())
	assert.False(t, w.DNRDialogOpen)
	assert.True(t, w.Form.DNR)

	w.CancelDNR()
	assert.False(t, w.Form.DNR)
	assert.Empty(t, w.Form.DNRDocumentation)
	assert.False(t, w.Form.DNRLegalAcknowledgment)
	assert.Empty(t, w.Form.DNRSignature)
}

func TestUntickingDNRClearsFields(t *testing.T) {
	w := New()
	require.NoError(t, w.Apply([]byte(`{"dnr":true,"dnrSignature":"Anne"}`)))
	require.NoError(t, w.Apply([]byte(`{"dnr":false}`)))
	assert.Empty(t, w.Form.DNRSignature)
	assert.False(t, w.DNRDialogOpen)
}

func TestSubmitBlocksDNRWithoutDocumentation(t *testing.T) {
	w := New()
	w.Form = validForm()
	w.Form.DNR = true
	w.Form.DNRLegalAcknowledgment = true
	w.Form.DNRSignature = "Anne Lovelace"
	w.Step = StepCount

	_, err := w.Submit(time.Now())
	require.Error(t, err)
	assert.Equal(t, 4, w.Step)
	assert.Equal(t, "DNR documentation is required", w.Errors["dnrDocumentation"])
}

func TestSubmitDefaultsSignatureDate(t *testing.T) {
	w := New()
	w.Form = validForm()
	w.Form.SignatureDate = ""

	form, err := w.Submit(time.Date(2025, 9, 3, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-09-03", form.SignatureDate)
}

func TestAssemble(t *testing.T) {
	form := validForm()
	form.StudentID = " S-1 "
	form.NonVerbal = true
	form.HasGuardian2 = true
	form.Parent2FirstName = "William"
	form.EmergencyContact2Name = "Mary Somerville"
	form.DNR = true
	form.DNRDocumentation = "dnr/u1/doc.pdf"

	req := Assemble(form)
	assert.Equal(t, models.StatusPending, req.Status)
	require.NotNil(t, req.StudentID)
	assert.Equal(t, "S-1", *req.StudentID)
	assert.Equal(t, models.Flags{DNR: true, NonVerbal: true}, req.Flags)
	assert.Nil(t, req.UserID)
	assert.Nil(t, req.CreatedAt)
	require.NotNil(t, req.Details.Guardian2)
	assert.Equal(t, "William", req.Details.Guardian2.FirstName)
	assert.Len(t, req.Details.EmergencyContacts, 2)
	require.NotNil(t, req.Details.DNR)
	assert.Equal(t, "dnr/u1/doc.pdf", req.Details.DNR.Documentation)
	assert.Equal(t, "23060", req.Details.Address.Zip)
}

func TestSetDNR(t *testing.T) {
	w := New()
	w.SetDNR(true)
	assert.True(t, w.Form.DNR)
	assert.True(t, w.DNRDialogOpen)

	w.Form.DNRSignature = "Anne"
	w.SetDNR(false)
	assert.False(t, w.Form.DNR)
	assert.False(t, w.DNRDialogOpen)
	assert.Empty(t, w.Form.DNRSignature)
}
