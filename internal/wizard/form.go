package wizard

// Behavioral is the behavioural needs checklist.
type Behavioral struct {
	AggressiveBehavior bool   `json:"aggressiveBehavior"`
	ElopementRisk      bool   `json:"elopementRisk"`
	EasilyOverwhelmed  bool   `json:"easilyOverwhelmed"`
	Other              string `json:"other"`
}

// Form is every field collected by the five submission steps.
type Form struct {
	// Student information
	StudentFirstName string `json:"studentFirstName" validate:"required,max=100"`
	StudentLastName  string `json:"studentLastName" validate:"required,max=100"`
	StudentID        string `json:"studentId" validate:"max=50"`
	School           string `json:"school" validate:"required,max=200"`
	Grade            string `json:"grade" validate:"required,oneof=Pre-K K 1 2 3 4 5 6 7 8 9 10 11 12"`
	SchoolYear       string `json:"schoolYear" validate:"required"`
	Gender           string `json:"gender"`
	NeedsAttended    bool   `json:"needsAttended"`
	NonVerbal        bool   `json:"nonVerbal"`
	StreetAddress    string `json:"streetAddress" validate:"required,max=300"`
	City             string `json:"city" validate:"required,max=100"`
	State            string `json:"state" validate:"required,max=50"`
	ZipCode          string `json:"zipCode" validate:"required,max=10"`

	// Parents and guardians
	Parent1FirstName    string `json:"parent1FirstName" validate:"required"`
	Parent1LastName     string `json:"parent1LastName" validate:"required"`
	Parent1Phone        string `json:"parent1Phone" validate:"required,usphone"`
	Parent1Email        string `json:"parent1Email" validate:"omitempty,email"`
	Parent1Relationship string `json:"parent1Relationship" validate:"required"`
	HasGuardian2        bool   `json:"hasGuardian2"`
	Parent2FirstName    string `json:"parent2FirstName"`
	Parent2LastName     string `json:"parent2LastName"`
	Parent2Phone        string `json:"parent2Phone" validate:"omitempty,usphone"`
	Parent2Email        string `json:"parent2Email" validate:"omitempty,email"`
	Parent2Relationship string `json:"parent2Relationship"`

	// Transportation
	PickupTime      string `json:"pickupTime" validate:"required"`
	PickupLocation  string `json:"pickupLocation" validate:"required,max=300"`
	DropOffTime     string `json:"dropOffTime" validate:"required"`
	DropOffLocation string `json:"dropOffLocation" validate:"required,max=300"`

	// Health and emergency
	EmergencyContact1Name           string     `json:"emergencyContact1Name" validate:"required"`
	EmergencyContact1Phone          string     `json:"emergencyContact1Phone" validate:"required,usphone"`
	EmergencyContact1Relationship   string     `json:"emergencyContact1Relationship" validate:"required"`
	EmergencyContact2Name           string     `json:"emergencyContact2Name"`
	EmergencyContact2Phone          string     `json:"emergencyContact2Phone" validate:"omitempty,usphone"`
	EmergencyContact2Relationship   string     `json:"emergencyContact2Relationship"`
	PreferredHospital               string     `json:"preferredHospital"`
	AdditionalEmergencyInstructions string     `json:"additionalEmergencyInstructions"`
	HasMedicalNeeds                 bool       `json:"hasMedicalNeeds"`
	RequiresMedicalSupport          bool       `json:"requiresMedicalSupport"`
	MedicalDevices                  []string   `json:"medicalDevices"`
	OtherMedicalDevice              string     `json:"otherMedicalDevice"`
	MedicalAmenities                []string   `json:"medicalAmenities"`
	VestSize                        string     `json:"vestSize" validate:"omitempty,oneof=None Small Medium Large"`
	HasCaretaker                    bool       `json:"hasCaretaker"`
	CaretakerName                   string     `json:"caretakerName"`
	CaretakerPhone                  string     `json:"caretakerPhone" validate:"omitempty,usphone"`
	BehavioralNeeds                 Behavioral `json:"behavioralNeeds"`
	BehavioralStrategies            string     `json:"behavioralStrategies"`
	DNR                             bool       `json:"dnr"`
	DNRDocumentation                string     `json:"dnrDocumentation" validate:"required"`
	DNRLegalAcknowledgment          bool       `json:"dnrLegalAcknowledgment" validate:"required"`
	DNRSignature                    string     `json:"dnrSignature" validate:"required"`

	// Consent
	ParentalConsent     bool     `json:"parentalConsent" validate:"required"`
	PolicyAgreement     bool     `json:"policyAgreement" validate:"required"`
	DigitalSignature    string   `json:"digitalSignature" validate:"required"`
	SignatureDate       string   `json:"signatureDate" validate:"required,datetime=2006-01-02"`
	RequiredDocuments   []string `json:"requiredDocuments"`
	SupportingDocuments []string `json:"supportingDocuments"`
	AdditionalComments  string   `json:"additionalComments" validate:"max=4000"`
}

// messages mirrors the inline errors of the web form.
var messages = map[string]string{
	"studentFirstName":              "First name is required",
	"studentLastName":               "Last name is required",
	"school":                        "School is required",
	"grade":                         "Grade is required",
	"grade.oneof":                   "Select a valid grade",
	"schoolYear":                    "School year is required",
	"streetAddress":                 "Street address is required",
	"city":                          "City is required",
	"state":                         "State is required",
	"zipCode":                       "ZIP code is required",
	"parent1FirstName":              "Parent/guardian first name is required",
	"parent1LastName":               "Parent/guardian last name is required",
	"parent1Phone":                  "Phone number is required",
	"parent1Relationship":           "Relationship is required",
	"pickupTime":                    "Pick-up time is required",
	"pickupLocation":                "Pick-up location is required",
	"dropOffTime":                   "Drop-off time is required",
	"dropOffLocation":               "Drop-off location is required",
	"emergencyContact1Name":         "At least one emergency contact is required",
	"emergencyContact1Phone":        "Emergency contact phone is required",
	"emergencyContact1Relationship": "Relationship is required",
	"dnrDocumentation":              "DNR documentation is required",
	"dnrLegalAcknowledgment":        "Legal acknowledgment is required",
	"dnrSignature":                  "Signature is required for DNR",
	"parentalConsent":               "Consent is required",
	"policyAgreement":               "Agreement to policies is required",
	"digitalSignature":              "Digital signature is required",
	"signatureDate":                 "Signature date is required",
	"signatureDate.datetime":        "Signature date must be YYYY-MM-DD",
}

// Phones lists pointers to every phone field so they can be formatted together.
func (f *Form) Phones() []*string {
	return []*string{
		&f.Parent1Phone,
		&f.Parent2Phone,
		&f.EmergencyContact1Phone,
		&f.EmergencyContact2Phone,
		&f.CaretakerPhone,
	}
}
