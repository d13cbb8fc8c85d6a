package contact

import (
	"context"
	"errors"
	"fmt"

	"msktravels/pkg/client"
	"msktravels/pkg/config"
	apperrors "msktravels/pkg/errors"
	"msktravels/pkg/model"
	"msktravels/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

const (
	AckSent           = "Message sent successfully!"
	msgMissingFields  = "Please fill in all required fields."
	msgSendFailed     = "Failed to send message. Please try again later."
	actionSendContact = "send a contact message"
)

// Sessions reports who is signed in.
type Sessions interface {
	Current() (*model.Session, bool)
}

type ContactAPI interface {
	Contact(ctx context.Context, msg model.ContactMessage) (string, error)
}

type Service struct {
	sessions   Sessions
	api        ContactAPI
	relay      client.Relay
	templateID string
	backend    string
	validate   *validator.Validate
	cfg        *config.Config
}

func NewService(cfg *config.Config, sessions Sessions, api ContactAPI, relay client.Relay) (*Service, error) {
	switch cfg.ContactBackend {
	case config.SubmissionREST:
		if api == nil {
			return nil, fmt.Errorf("rest contact backend needs an api")
		}
	case config.SubmissionRelay:
		if relay == nil {
			return nil, fmt.Errorf("relay contact backend needs a relay")
		}
	default:
		return nil, fmt.Errorf("unknown contact backend %q", cfg.ContactBackend)
	}

	return &Service{
		sessions:   sessions,
		api:        api,
		relay:      relay,
		templateID: cfg.EmailJSContactTemplate,
		backend:    cfg.ContactBackend,
		validate:   validator.New(),
		cfg:        cfg,
	}, nil
}

// Submit sends the message and returns the acknowledgement shown to the
// visitor. Sender fields left blank are taken from the session.
func (s *Service) Submit(ctx context.Context, form model.ContactMessage) (string, error) {
	session, ok := s.sessions.Current()
	if !ok {
		return "", apperrors.AuthorizationRequired(actionSendContact)
	}

	msg := fillFromSession(form, session)
	if err := s.validate.Struct(msg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 && validationErrs[0].Tag() == "email" {
			return "", apperrors.FieldValidation("email", "Enter a valid email address.")
		}
		return "", apperrors.ReasonValidation(msgMissingFields)
	}

	if s.backend == config.SubmissionRelay {
		return s.sendRelay(ctx, msg)
	}
	return s.sendREST(ctx, msg)
}

func (s *Service) sendRelay(ctx context.Context, msg model.ContactMessage) (string, error) {
	params := map[string]string{
		"name":    msg.Name,
		"email":   msg.Email,
		"phone":   msg.Phone,
		"subject": msg.Subject,
		"message": msg.Message,
	}
	if err := s.relay.SendMessage(ctx, s.templateID, params); err != nil {
		s.cfg.Log.Warn("Relay rejected contact message",
			"template_id", s.templateID,
			"error", err,
		)
		return "", apperrors.Submission(msgSendFailed, err)
	}

	s.cfg.Log.Info("Contact message relayed", "subject", msg.Subject)
	return AckSent, nil
}

func (s *Service) sendREST(ctx context.Context, msg model.ContactMessage) (string, error) {
	ack, err := s.api.Contact(ctx, msg)
	if err != nil {
		s.cfg.Log.Warn("Contact message rejected by travel API", "error", err)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Detail() != "" {
			return "", apperrors.Submission(apiErr.Detail(), err)
		}
		return "", apperrors.Submission(msgSendFailed, err)
	}

	s.cfg.Log.Info("Contact message sent", "subject", msg.Subject)
	if ack == "" {
		ack = AckSent
	}
	return ack, nil
}

func fillFromSession(form model.ContactMessage, session *model.Session) model.ContactMessage {
	msg := model.ContactMessage{
		Name:    sanitizer.NormalizeName(form.Name),
		Email:   sanitizer.NormalizeEmail(form.Email),
		Phone:   sanitizer.NormalizePhone(form.Phone),
		Subject: sanitizer.CollapseSpaces(form.Subject),
		Message: sanitizer.NormalizeMessage(form.Message),
	}
	if msg.Name == "" {
		msg.Name = session.DisplayName()
	}
	if msg.Email == "" {
		msg.Email = session.Email
	}
	if msg.Phone == "" {
		msg.Phone = session.Phone
	}
	return msg
}
