package handler

import (
	"math"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createReservationRequest, userID string) ports.CreateReservationInput {
	in := ports.CreateReservationInput{
		Kind:   domain.ReservationKind(req.Kind),
		UserID: userID,
		Notes:  req.Notes,
	}
	if req.Session != nil {
		in.Session = &ports.SessionRefInput{
			SessionID:      req.Session.SessionID,
			FormationTitle: req.Session.FormationTitle,
			StartDate:      req.Session.StartDate,
		}
	}
	if req.Rental != nil {
		in.Rental = &ports.RentalRefInput{
			ExamCenter: req.Rental.ExamCenter,
			StartDate:  req.Rental.StartDate,
			EndDate:    req.Rental.EndDate,
		}
	}
	return in
}

// --- Domain → Response ---

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:            r.ID,
		Kind:          string(r.Kind),
		Status:        string(r.Status),
		StatusLabel:   r.Status.Label(),
		StatusColor:   r.Status.Color(),
		Subject:       toSubjectResponse(r.Subject),
		Session:       r.Session,
		Rental:        r.Rental,
		TrackingToken: r.TrackingToken,
		Notes:         r.Notes,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		StatusHistory: toHistoryResponse(r.StatusHistory),
	}
}

func toSummaryResponse(r *domain.Reservation) reservationSummaryResponse {
	return reservationSummaryResponse{
		ID:          r.ID,
		Kind:        string(r.Kind),
		Status:      string(r.Status),
		StatusLabel: r.Status.Label(),
		Subject:     toSubjectResponse(r.Subject),
		Session:     r.Session,
		Rental:      r.Rental,
		CreatedAt:   r.CreatedAt,
	}
}

func toSubjectResponse(s domain.Subject) subjectResponse {
	return subjectResponse{
		UserID:    s.UserID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
	}
}

func toHistoryResponse(entries []domain.StatusHistoryEntry) []statusHistoryItemResponse {
	out := make([]statusHistoryItemResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, statusHistoryItemResponse{
			From:      string(e.From),
			Status:    string(e.Status),
			Timestamp: e.Timestamp,
			ActorRole: e.ActorRole,
			Notes:     e.Notes,
		})
	}
	return out
}

func toTrackResponse(r *domain.Reservation) trackResponse {
	return trackResponse{
		Status:        string(r.Status),
		StatusLabel:   r.Status.Label(),
		StatusColor:   r.Status.Color(),
		FirstName:     r.Subject.FirstName,
		Rental:        r.Rental,
		StatusHistory: toHistoryResponse(r.StatusHistory),
	}
}

func toPagination(total int64, page, limit int) paginationResponse {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return paginationResponse{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
