// Package notification delivers one-time passcodes to users over SMS.
//
// Delivery failure is explicitly non-fatal: the transfer flow continues and
// the caller falls back to showing the code on screen.
package notification

import (
	"context"
	"fmt"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/logger"
)

// otpTemplate is the fixed message body sent with each passcode.
const otpTemplate = "Your verification code is: %s. Do not share this code with anyone."

// Gateway is the outbound SMS transport.
type Gateway interface {
	SendSMS(ctx context.Context, destination, text string) error
}

// Service defines the notifier used by the transfer engine.
type Service interface {
	SendOTP(ctx context.Context, destination, code string) domain.DeliveryStatus
}

// DefaultService sends passcodes through a Gateway and reports the outcome.
type DefaultService struct {
	gateway Gateway
	logger  logger.Logger
}

func NewService(gateway Gateway, log logger.Logger) *DefaultService {
	return &DefaultService{
		gateway: gateway,
		logger:  log,
	}
}

// SendOTP delivers the code to destination. It never returns an error: a
// failed delivery is reported as a status so the caller can degrade to
// on-screen display instead of aborting the transfer.
func (s *DefaultService) SendOTP(ctx context.Context, destination, code string) domain.DeliveryStatus {
	text := fmt.Sprintf(otpTemplate, code)

	if err := s.gateway.SendSMS(ctx, destination, text); err != nil {
		s.logger.Warn("OTP delivery failed, falling back to on-screen display", map[string]interface{}{
			"destination": maskDestination(destination),
			"error":       err.Error(),
		})
		return domain.DeliveryFailed
	}

	s.logger.Info("OTP delivered", map[string]interface{}{
		"destination": maskDestination(destination),
	})
	return domain.DeliveryDelivered
}

// maskDestination hides all but the last 4 characters of a phone number in logs.
func maskDestination(destination string) string {
	if len(destination) <= 4 {
		return "****"
	}
	return "****" + destination[len(destination)-4:]
}
