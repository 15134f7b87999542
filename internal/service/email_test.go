package service_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/service"

	"github.com/sendgrid/sendgrid-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSendClient(url string) *sendgrid.Client {
	request := sendgrid.GetRequest("SG.test", "/v3/mail/send", url)
	request.Method = "POST"
	return &sendgrid.Client{Request: request}
}

func TestSendGridEmailService(t *testing.T) {
	ctx := context.Background()
	to := domain.User{ID: "renter-1", Email: "renter@test.com", Name: "Renter"}

	t.Run("Success", func(t *testing.T) {
		var body map[string]any
		var auth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &body)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		svc := service.NewSendGridEmailService(newTestSendClient(srv.URL), "noreply@rentshare.test", "RentShare")
		require.NoError(t, svc.SendBookingEmail(ctx, to, "Booking Confirmed", "Your booking is confirmed"))
		assert.Equal(t, "Bearer SG.test", auth)
		assert.Equal(t, "Booking Confirmed", body["subject"])
		from := body["from"].(map[string]any)
		assert.Equal(t, "noreply@rentshare.test", from["email"])
	})

	t.Run("Provider error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
		}))
		defer srv.Close()

		svc := service.NewSendGridEmailService(newTestSendClient(srv.URL), "noreply@rentshare.test", "RentShare")
		err := svc.SendBookingEmail(ctx, to, "Subject", "Body")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("Missing address", func(t *testing.T) {
		svc := service.NewSendGridEmailService(newTestSendClient("http://127.0.0.1:0"), "noreply@rentshare.test", "RentShare")
		err := svc.SendBookingEmail(ctx, domain.User{ID: "u"}, "Subject", "Body")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("No API key only logs", func(t *testing.T) {
		svc := service.NewEmailService("", "noreply@rentshare.test", "RentShare")
		assert.NoError(t, svc.SendBookingEmail(ctx, to, "Subject", "Body"))
	})
}
