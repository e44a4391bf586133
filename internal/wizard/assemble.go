package wizard

import (
	"strings"

	"github.com/noah-isme/transport-request-api/internal/models"
)

// Assemble flattens a validated form into one request record. Ownership,
// district and timestamps are stamped by the caller.
func Assemble(f Form) models.TransportRequest {
	req := models.TransportRequest{
		StudentFirstName: strings.TrimSpace(f.StudentFirstName),
		StudentLastName:  strings.TrimSpace(f.StudentLastName),
		School:           f.School,
		Grade:            f.Grade,
		SchoolYear:       f.SchoolYear,
		Status:           models.StatusPending,
		Flags: models.Flags{
			DNR:           f.DNR,
			NeedsAttended: f.NeedsAttended,
			NonVerbal:     f.NonVerbal,
		},
		PickupLocation:  f.PickupLocation,
		PickupTime:      f.PickupTime,
		DropOffLocation: f.DropOffLocation,
		DropOffTime:     f.DropOffTime,
	}
	if id := strings.TrimSpace(f.StudentID); id != "" {
		req.StudentID = &id
	}

	details := models.RequestDetails{
		Gender: f.Gender,
		Address: models.Address{
			Street: f.StreetAddress,
			City:   f.City,
			State:  f.State,
			Zip:    f.ZipCode,
		},
		Guardian1: models.Guardian{
			FirstName:    f.Parent1FirstName,
			LastName:     f.Parent1LastName,
			Phone:        f.Parent1Phone,
			Email:        f.Parent1Email,
			Relationship: f.Parent1Relationship,
		},
		HasGuardian2: f.HasGuardian2,
		EmergencyContacts: []models.EmergencyContact{{
			Name:         f.EmergencyContact1Name,
			Phone:        f.EmergencyContact1Phone,
			Relationship: f.EmergencyContact1Relationship,
		}},
		Medical: models.MedicalNeeds{
			HasMedicalNeeds:   f.HasMedicalNeeds,
			Devices:           f.MedicalDevices,
			OtherDevice:       f.OtherMedicalDevice,
			Amenities:         f.MedicalAmenities,
			VestSize:          f.VestSize,
			RequiresSupport:   f.RequiresMedicalSupport,
			HasCaretaker:      f.HasCaretaker,
			PreferredHospital: f.PreferredHospital,
			EmergencyGuidance: f.AdditionalEmergencyInstructions,
		},
		Behavioral: models.BehavioralNeeds{
			AggressiveBehavior: f.BehavioralNeeds.AggressiveBehavior,
			ElopementRisk:      f.BehavioralNeeds.ElopementRisk,
			EasilyOverwhelmed:  f.BehavioralNeeds.EasilyOverwhelmed,
			Other:              f.BehavioralNeeds.Other,
			Strategies:         f.BehavioralStrategies,
		},
		Consent: models.Consent{
			ParentalConsent:  f.ParentalConsent,
			PolicyAgreement:  f.PolicyAgreement,
			DigitalSignature: f.DigitalSignature,
			SignatureDate:    f.SignatureDate,
		},
		RequiredDocuments:   f.RequiredDocuments,
		SupportingDocuments: f.SupportingDocuments,
		AdditionalComments:  f.AdditionalComments,
	}
	if f.HasGuardian2 {
		details.Guardian2 = &models.Guardian{
			FirstName:    f.Parent2FirstName,
			LastName:     f.Parent2LastName,
			Phone:        f.Parent2Phone,
			Email:        f.Parent2Email,
			Relationship: f.Parent2Relationship,
		}
	}
	if strings.TrimSpace(f.EmergencyContact2Name) != "" {
		details.EmergencyContacts = append(details.EmergencyContacts, models.EmergencyContact{
			Name:         f.EmergencyContact2Name,
			Phone:        f.EmergencyContact2Phone,
			Relationship: f.EmergencyContact2Relationship,
		})
	}
	if f.HasCaretaker {
		details.Medical.CaretakerName = f.CaretakerName
		details.Medical.CaretakerPhone = f.CaretakerPhone
	}
	if f.DNR {
		details.DNR = &models.DNRRecord{
			Documentation:       f.DNRDocumentation,
			LegalAcknowledgment: f.DNRLegalAcknowledgment,
			Signature:           f.DNRSignature,
		}
	}
	req.Details = details
	return req
}
