package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/ridebook/internal/middleware"
	"github.com/hitoshi/ridebook/internal/model"
)

// BookingServiceInterface は予約ハンドラーが必要とするサービスインターフェース。
type BookingServiceInterface interface {
	Book(ctx context.Context, ownerEmail, source, destination string, distanceKm float64) (*model.Booking, error)
	List(ctx context.Context, ownerEmail string) ([]*model.Booking, error)
}

// BookingHandler は配車予約のHTTPハンドラー。
// SessionMiddlewareの後段に配置し、コンテキストのアカウントを予約者として扱う。
type BookingHandler struct {
	service BookingServiceInterface
}

// NewBookingHandler はBookingHandlerを生成する。
func NewBookingHandler(service BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: service}
}

// bookRequest は予約作成リクエストのボディ。
// distanceは数値必須のため、未指定を判別できるようポインタで受ける。
type bookRequest struct {
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Distance    *float64 `json:"distance"`
}

type bookResponse struct {
	Success string  `json:"success"`
	Fare    float64 `json:"fare"`
}

// bookingResponse は予約一覧の1件分。
type bookingResponse struct {
	OwnerEmail  string  `json:"ownerEmail"`
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	DistanceKm  float64 `json:"distanceKm"`
	Fare        float64 `json:"fare"`
}

// Book は予約を作成し、算出した運賃を返す。
// POST /book
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.AccountEmailFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Distance == nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidInputError(model.MsgBookingFieldsRequired))
		return
	}

	booking, err := h.service.Book(r.Context(), email, req.Source, req.Destination, *req.Distance)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, bookResponse{
		Success: "Booking created",
		Fare:    booking.Fare,
	})
}

// ListBookings は認証済みアカウントの予約一覧を返す。
// 予約がない場合は空配列を返す。
// GET /bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.AccountEmailFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	bookings, err := h.service.List(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, toBookingResponse(b))
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

func toBookingResponse(b *model.Booking) bookingResponse {
	return bookingResponse{
		OwnerEmail:  b.OwnerEmail,
		Source:      b.Source,
		Destination: b.Destination,
		DistanceKm:  b.DistanceKm,
		Fare:        b.Fare,
	}
}
