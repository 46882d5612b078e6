package http

import (
	"time"

	"clinic-auth/internal/domain"
	"clinic-auth/internal/storage"
)

type PatientResponse struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Gender    string `json:"gender,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ResolutionResponse struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func patientToResponse(p domain.Patient) PatientResponse {
	return PatientResponse{
		ID:        p.ID,
		SubjectID: p.SubjectID,
		Name:      p.Name,
		Email:     p.Email,
		Gender:    p.Gender,
		BirthDate: p.BirthDate,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func resolutionToResponse(r domain.Resolution) ResolutionResponse {
	return ResolutionResponse{
		ID:        r.ID,
		PatientID: r.PatientID,
		Text:      r.Text,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

func resolutionsToResponse(list []domain.Resolution) []ResolutionResponse {
	resp := make([]ResolutionResponse, len(list))
	for i := range list {
		resp[i] = resolutionToResponse(list[i])
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
