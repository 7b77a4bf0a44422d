package sheets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"

	"cboard-backend/internal/store"
)

// Scope is the only OAuth scope the backend asks for.
const Scope = sheetsapi.SpreadsheetsReadonlyScope

// ErrNoToken is returned when installed-app credentials are configured but no
// token has been stored yet.
var ErrNoToken = errors.New("no stored OAuth token, run `cboard auth` first")

// TokenSource builds an OAuth token source from a credentials file. Service
// account keys use the JWT flow. Installed-app client secrets use the token
// kept in s under tokenKey, which is refreshed lazily and written back.
func TokenSource(ctx context.Context, credentialsFile string, s store.Store, tokenKey string, logger *zap.Logger) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}

	if header.Type == "service_account" {
		cfg, err := google.JWTConfigFromJSON(data, Scope)
		if err != nil {
			return nil, fmt.Errorf("parsing service account key: %w", err)
		}
		return cfg.TokenSource(ctx), nil
	}

	cfg, err := google.ConfigFromJSON(data, Scope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	var tok oauth2.Token
	if !s.GetJSON(tokenKey, &tok) {
		return nil, ErrNoToken
	}

	return &persistingTokenSource{
		base:   cfg.TokenSource(ctx, &tok),
		store:  s,
		key:    tokenKey,
		last:   tok.AccessToken,
		logger: logger,
	}, nil
}

// persistingTokenSource writes every newly issued token back to the store.
type persistingTokenSource struct {
	base   oauth2.TokenSource
	store  store.Store
	key    string
	logger *zap.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if tok.AccessToken != p.last {
		if err := p.store.SetJSON(p.key, tok); err != nil {
			p.logger.Warn("failed to persist refreshed token", zap.Error(err))
		} else {
			p.last = tok.AccessToken
			p.logger.Debug("persisted refreshed token", zap.Time("expiry", tok.Expiry))
		}
	}
	return tok, nil
}

// Authorize runs the installed-app consent flow. It listens on a loopback
// port for the redirect, hands the consent URL to prompt and stores the
// exchanged token in s under tokenKey.
func Authorize(ctx context.Context, credentialsFile string, s store.Store, tokenKey string, prompt func(authURL string)) (*oauth2.Token, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, Scope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listening for redirect: %w", err)
	}
	cfg.RedirectURL = "http://" + ln.Addr().String() + "/"

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Browsers also ask for /favicon.ico and the like.
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("state mismatch in redirect"):
			default:
			}
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "authorization failed: "+e, http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("authorization failed: %s", e):
			default:
			}
			return
		}
		w.Write([]byte("Authorization complete. You can close this window.\n"))
		select {
		case codeCh <- q.Get("code"):
		default:
		}
	})}
	go srv.Serve(ln)
	defer srv.Shutdown(context.Background())

	prompt(cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}
	if err := s.SetJSON(tokenKey, tok); err != nil {
		return nil, fmt.Errorf("storing token: %w", err)
	}
	return tok, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
