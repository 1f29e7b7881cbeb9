package client

import (
	"sync"

	"github.com/ramdasbb/villageorbit/cmd/orbitctl/internal/auth"
	"github.com/ramdasbb/villageorbit/pkg/sdk"
)

// Provider yields the SDK client and session backed by the file credential
// store, constructed lazily and shared by every command in one invocation.
type Provider struct {
	serverURL string
	villageID string

	once    sync.Once
	client  *sdk.Client
	session *sdk.Session
	err     error
}

// NewProvider constructs a Provider bound to the given server URL.
func NewProvider(serverURL, villageID string) *Provider {
	return &Provider{serverURL: serverURL, villageID: villageID}
}

func (p *Provider) build() {
	store, err := auth.NewFileStore()
	if err != nil {
		p.err = err
		return
	}
	opts := []sdk.ClientOption{sdk.WithTokenStore(store)}
	if p.villageID != "" {
		opts = append(opts, sdk.WithVillageID(p.villageID))
	}
	p.client = sdk.NewClient(p.serverURL, opts...)
	p.session = sdk.NewSession(p.client)
}

// Client returns the shared API client.
func (p *Provider) Client() (*sdk.Client, error) {
	p.once.Do(p.build)
	return p.client, p.err
}

// Session returns the shared session state.
func (p *Provider) Session() (*sdk.Session, error) {
	p.once.Do(p.build)
	return p.session, p.err
}
