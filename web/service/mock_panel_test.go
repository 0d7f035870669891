package service

import (
	"context"
	"sync"
	"testing"

	"github.com/sing-box-orbit/sing-box-orbit-back/database"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/repository"
	"github.com/sing-box-orbit/sing-box-orbit-back/panel"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakePanel 内存中的面板，按 url 区分
type fakePanel struct {
	mu       sync.Mutex
	online   bool
	inbounds []panel.Inbound
	tls      []panel.Tls
	clients  []panel.RemoteClient
	nextId   int

	CreateErr  error
	LoadErr    error
	DeleteErr  error
	HideOnLoad bool

	created []panel.ClientSaveData
	updated []panel.ClientSaveData
	deleted []int
}

func newFakePanel() *fakePanel {
	return &fakePanel{online: true, nextId: 100}
}

func (p *fakePanel) Status(ctx context.Context) (*panel.Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online {
		return nil, common.ErrConnectionFailed
	}
	return &panel.Status{Running: true, Version: "test"}, nil
}

func (p *fakePanel) Load(ctx context.Context) (*panel.LoadData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.LoadErr != nil {
		return nil, p.LoadErr
	}
	data := &panel.LoadData{
		Inbounds: append([]panel.Inbound(nil), p.inbounds...),
		Tls:      append([]panel.Tls(nil), p.tls...),
	}
	if !p.HideOnLoad {
		data.Clients = append([]panel.RemoteClient(nil), p.clients...)
	}
	return data, nil
}

func (p *fakePanel) CreateClient(ctx context.Context, data panel.ClientSaveData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CreateErr != nil {
		return p.CreateErr
	}
	p.nextId++
	p.clients = append(p.clients, panel.RemoteClient{Id: p.nextId, Name: data.Name, Enable: data.Enable, Inbounds: data.Inbounds})
	p.created = append(p.created, data)
	return nil
}

func (p *fakePanel) UpdateClient(ctx context.Context, data panel.ClientSaveData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, data)
	return nil
}

func (p *fakePanel) DeleteClient(ctx context.Context, id int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.DeleteErr != nil {
		return p.DeleteErr
	}
	p.deleted = append(p.deleted, id)
	return nil
}

func (p *fakePanel) TestConnection(ctx context.Context) bool {
	_, err := p.Status(ctx)
	return err == nil
}

func (p *fakePanel) setSnapshot(inbounds []panel.Inbound, tls []panel.Tls) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inbounds = inbounds
	p.tls = tls
}

// fakePanels 是测试用的 panel.Factory
type fakePanels struct {
	mu     sync.Mutex
	panels map[string]*fakePanel
}

func (f *fakePanels) get(url string) *fakePanel {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panels == nil {
		f.panels = map[string]*fakePanel{}
	}
	p, ok := f.panels[url]
	if !ok {
		p = newFakePanel()
		f.panels[url] = p
	}
	return p
}

func (f *fakePanels) factory() panel.Factory {
	return func(baseURL, token string) panel.API {
		return f.get(baseURL)
	}
}

type testEnv struct {
	db       *gorm.DB
	panels   *fakePanels
	servers  *ServerService
	clients  *ClientService
	tpls     *SubscriptionTemplateService
	inbounds repository.InboundRepository
	links    repository.ClientServerRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.CreateTestDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CleanupTestDB(db) })

	serverRepo := repository.NewServerRepository(db)
	inboundRepo := repository.NewInboundRepository(db)
	clientRepo := repository.NewClientRepository(db)
	linkRepo := repository.NewClientServerRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	tplRepo := repository.NewSubscriptionTemplateRepository(db)

	panels := &fakePanels{}
	return &testEnv{
		db:       db,
		panels:   panels,
		servers:  NewServerService(serverRepo, inboundRepo, panels.factory()),
		clients:  NewClientService(clientRepo, linkRepo, serverRepo, inboundRepo, subRepo, tplRepo, panels.factory()),
		tpls:     NewSubscriptionTemplateService(tplRepo),
		inbounds: inboundRepo,
		links:    linkRepo,
	}
}

func intPtr(v int) *int { return &v }
