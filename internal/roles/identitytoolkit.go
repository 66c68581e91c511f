package roles

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/turboairmx/quotesync/internal/models"
	"github.com/turboairmx/quotesync/pkg/config"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// IdentityToolkitIssuer issues claims through the Identity Toolkit account API.
type IdentityToolkitIssuer struct {
	svc *identitytoolkit.Service
}

// NewIdentityToolkitIssuer authenticates with the configured service account
// JSON, or application default credentials when none is set. Extra options
// are appended last.
func NewIdentityToolkitIssuer(ctx context.Context, cfg config.GCPConfig, opts ...option.ClientOption) (*IdentityToolkitIssuer, error) {
	var base []option.ClientOption
	if raw := strings.TrimSpace(cfg.CredentialsJSON); raw != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(raw), identitytoolkit.CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("identity toolkit credentials: %w", err)
		}
		base = append(base, option.WithHTTPClient(oauth2.NewClient(ctx, creds.TokenSource)))
	}
	if cfg.ProjectID != "" {
		base = append(base, option.WithQuotaProject(cfg.ProjectID))
	}
	svc, err := identitytoolkit.NewService(ctx, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit service: %w", err)
	}
	return &IdentityToolkitIssuer{svc: svc}, nil
}

func (i *IdentityToolkitIssuer) SetCustomClaims(ctx context.Context, uid string, claims models.CustomClaims) error {
	attrs, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	_, err = i.svc.Relyingparty.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		LocalId:          uid,
		CustomAttributes: string(attrs),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("set account info %s: %w", uid, err)
	}
	return nil
}

func (i *IdentityToolkitIssuer) Lookup(ctx context.Context, uid string) (Identity, error) {
	return i.lookup(ctx, uid, &identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		LocalId: []string{uid},
	})
}

func (i *IdentityToolkitIssuer) LookupEmail(ctx context.Context, email string) (Identity, error) {
	return i.lookup(ctx, email, &identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		Email: []string{email},
	})
}

func (i *IdentityToolkitIssuer) lookup(ctx context.Context, ref string, req *identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest) (Identity, error) {
	resp, err := i.svc.Relyingparty.GetAccountInfo(req).Context(ctx).Do()
	if err != nil {
		return Identity{}, fmt.Errorf("get account info %s: %w", ref, err)
	}
	if resp == nil || len(resp.Users) == 0 {
		return Identity{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "user %s not found", ref)
	}
	user := resp.Users[0]
	id := Identity{UID: user.LocalId, Email: user.Email}
	if user.CreatedAt > 0 {
		id.CreatedAt = time.UnixMilli(user.CreatedAt).UTC()
	}
	if user.LastLoginAt > 0 {
		id.LastSignInAt = time.UnixMilli(user.LastLoginAt).UTC()
	}
	if attrs := strings.TrimSpace(user.CustomAttributes); attrs != "" {
		if err := json.Unmarshal([]byte(attrs), &id.CustomClaims); err != nil {
			return Identity{}, fmt.Errorf("decode custom attributes for %s: %w", ref, err)
		}
	}
	return id, nil
}
