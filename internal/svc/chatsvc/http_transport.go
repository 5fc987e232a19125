package chatsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/arsentiypro2013-collab/chat/internal/infra/logging"
	http_ "github.com/arsentiypro2013-collab/chat/internal/infra/transport/http"
)

const statusOnline = "online"

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	// DocumentRoot is the directory served for non-API GET requests
	DocumentRoot string `env:"DOCUMENT_ROOT" default:"web"`
}

// HTTPTransport handles HTTP requests for the chat account service.
// It decodes JSON bodies, dispatches to the service by endpoint, and wraps
// every logical outcome in a {success, message} envelope with HTTP 200.
// Malformed bodies and escaped faults are the only 500s.
type HTTPTransport struct {
	chatSvc *ChatService
	static  http.Handler
	log     logging.Logger
	cfg     HTTPTransportConfig
}

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires a ChatService for handling account and contact operations.
func NewHTTPTransport(
	chatSvc *ChatService,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		chatSvc: chatSvc,
		static:  http.FileServer(http.Dir(cfg.DocumentRoot)),
		log:     logging.GetLogger("svc.chatsvc.http_transport"),
		cfg:     cfg,
	}
}

// ServeHTTP implements http.Handler and sets up routes for the chat service endpoints:
// - POST /api/register: Create a new account
// - POST /api/login: Verify credentials and return the account payload
// - POST /api/settings: Apply a sparse settings update
// - POST /api/contacts: Add, list, or remove contacts by action
// Any other /api path yields an unknown-endpoint envelope; non-API GETs are
// served from the document root.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", ht.HandleRegister)
	mux.HandleFunc("POST /api/login", ht.HandleLogin)
	mux.HandleFunc("POST /api/settings", ht.HandleSettings)
	mux.HandleFunc("POST /api/contacts", ht.HandleContacts)
	mux.HandleFunc("POST /api/", ht.HandleUnknown)
	mux.Handle("GET /", ht.static)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// decodeRequest decodes the JSON body into v. On failure it writes a bare 500;
// an undecodable body is a transport fault, not a logical outcome.
func (ht *HTTPTransport) decodeRequest(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return fmt.Errorf("decode request: %w", err)
	}

	return nil
}

// writeResponse emits a logical outcome: HTTP 200, JSON body, permissive CORS.
func (ht *HTTPTransport) writeResponse(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// HandleRegister processes account registration requests.
// Expects a JSON body with username, password, and an optional avatar.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "register request failed", "error", err)
		} else {
			log.DebugContext(ctx, "register request handled")
		}
	}(r.Context())

	var req RegisterRequest
	if err := ht.decodeRequest(w, r, &req); err != nil {
		return err
	}

	log = log.With(logging.Group("user", "username", req.Username))

	if err := ht.chatSvc.Register(r.Context(), req.Username, req.Password, req.Avatar); err != nil {
		if writeErr := ht.writeResponse(w, failureResponse(err, "registration")); writeErr != nil {
			return writeErr
		}

		return fmt.Errorf("register: %w", err)
	}

	return ht.writeResponse(w, Response{Success: true, Message: "registration successful"})
}

// HandleLogin processes login requests.
// Expects a JSON body with username and password; returns the account payload
// under user_data on success.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "login request failed", "error", err)
		} else {
			log.DebugContext(ctx, "login request handled")
		}
	}(r.Context())

	var req LoginRequest
	if err := ht.decodeRequest(w, r, &req); err != nil {
		return err
	}

	log = log.With(logging.Group("user", "username", req.Username))

	user, err := ht.chatSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if writeErr := ht.writeResponse(w, failureResponse(err, "login")); writeErr != nil {
			return writeErr
		}

		return fmt.Errorf("login: %w", err)
	}

	return ht.writeResponse(w, LoginResponse{
		Response: Response{Success: true, Message: "login successful"},
		UserData: &UserData{
			ID:            user.ID,
			Username:      user.Username,
			Avatar:        user.Avatar,
			Theme:         user.Theme,
			Notifications: user.Notifications,
		},
	})
}

// HandleSettings processes sparse settings updates.
// Expects a JSON body with username and a settings object carrying any of
// theme, notifications, avatar.
func (ht *HTTPTransport) HandleSettings(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleSettings(w, r)
}

func (ht *HTTPTransport) handleSettings(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "settings request failed", "error", err)
		} else {
			log.DebugContext(ctx, "settings request handled")
		}
	}(r.Context())

	var req SettingsRequest
	if err := ht.decodeRequest(w, r, &req); err != nil {
		return err
	}

	log = log.With(logging.Group("user", "username", req.Username))

	if err := ht.chatSvc.UpdateSettings(r.Context(), req.Username, req.Settings.Domain()); err != nil {
		if writeErr := ht.writeResponse(w, failureResponse(err, "settings update")); writeErr != nil {
			return writeErr
		}

		return fmt.Errorf("update settings: %w", err)
	}

	return ht.writeResponse(w, Response{Success: true, Message: "settings updated"})
}

// HandleContacts dispatches contact operations by the action discriminator:
// "add", "get", and "remove".
func (ht *HTTPTransport) HandleContacts(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleContacts(w, r)
}

func (ht *HTTPTransport) handleContacts(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "contacts request failed", "error", err)
		} else {
			log.DebugContext(ctx, "contacts request handled")
		}
	}(r.Context())

	var req ContactsRequest
	if err := ht.decodeRequest(w, r, &req); err != nil {
		return err
	}

	log = log.With(logging.Group("contact",
		"username", req.Username,
		"action", req.Action,
	))

	switch req.Action {
	case "add":
		if err := ht.chatSvc.AddContact(r.Context(), req.Username, req.ContactUsername); err != nil {
			if writeErr := ht.writeResponse(w, failureResponse(err, "contact add")); writeErr != nil {
				return writeErr
			}

			return fmt.Errorf("add contact: %w", err)
		}

		return ht.writeResponse(w, Response{Success: true, Message: "contact added"})

	case "get":
		entries, err := ht.chatSvc.ListContacts(r.Context(), req.Username)
		if err != nil {
			// A failed list degrades to an empty contact list rather than a
			// failure envelope.
			entries = nil
		}

		contacts := make([]ContactEntry, 0, len(entries))
		for _, entry := range entries {
			contacts = append(contacts, ContactEntry{
				Username: entry.Username,
				Avatar:   entry.Avatar,
				Status:   statusOnline,
			})
		}

		return ht.writeResponse(w, ContactsResponse{Success: true, Contacts: contacts})

	case "remove":
		if err := ht.chatSvc.RemoveContact(r.Context(), req.Username, req.ContactUsername); err != nil {
			if writeErr := ht.writeResponse(w, failureResponse(err, "contact remove")); writeErr != nil {
				return writeErr
			}

			return fmt.Errorf("remove contact: %w", err)
		}

		return ht.writeResponse(w, Response{Success: true, Message: "contact removed"})

	default:
		return ht.writeResponse(w, Response{Success: false, Message: "unknown action"})
	}
}

// HandleUnknown answers any unmatched /api path with a failure envelope.
// Unknown endpoints are a logical outcome, not a transport error.
func (ht *HTTPTransport) HandleUnknown(w http.ResponseWriter, r *http.Request) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))
	log.WarnContext(r.Context(), "unknown endpoint")

	_ = ht.writeResponse(w, Response{Success: false, Message: "unknown endpoint"})
}
