package workflow

import (
	"time"

	"github.com/noah-isme/transport-request-api/internal/models"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func sampleRequests() []models.TransportRequest {
	return []models.TransportRequest{
		{ID: "1", UserID: strPtr("p1"), StudentFirstName: "Ada", StudentLastName: "Lovelace", School: "Deep Run High School", District: "Lincoln", Status: models.StatusPending, CreatedAt: timePtr(day(2025, time.March, 2))},
		{ID: "2", UserID: strPtr("p2"), StudentFirstName: "Grace", StudentLastName: "Hopper", School: "Mills G. Godwin High School", District: "Lincoln", Status: models.StatusApproved, Flags: models.Flags{NonVerbal: true}, CreatedAt: timePtr(day(2025, time.January, 15))},
		{ID: "3", UserID: strPtr("p3"), StudentFirstName: "Alan", StudentLastName: "Turing", StudentID: strPtr("S-900"), School: "Douglas S. Freeman High School", District: "Jefferson", Status: models.StatusRejected, CreatedAt: timePtr(day(2025, time.February, 20))},
		{ID: "4", StudentFirstName: "Edsger", StudentLastName: "Dijkstra", District: "Jefferson", UpdatedAt: timePtr(day(2025, time.April, 4))},
	}
}

func ids(requests []models.TransportRequest) []string {
	out := make([]string, len(requests))
	for i, r := range requests {
		out[i] = r.ID
	}
	return out
}
