package app

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/revista/internal/auth"
	"github.com/abrezinsky/revista/internal/handlers"
	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/internal/repository"
	"github.com/abrezinsky/revista/internal/schema"
	"github.com/abrezinsky/revista/internal/services"
	"github.com/abrezinsky/revista/internal/websocket"
	"github.com/abrezinsky/revista/pkg/registry"
)

// statsInterval is how often connected dashboards receive fresh counters
const statsInterval = 15 * time.Second

// Config holds the startup paths of the application
type Config struct {
	DBPath     string
	SchemaPath string // empty uses the embedded default schema
}

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	repo     *repository.Repository
	schemas  *schema.Store
	cancel   context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg Config, client registry.Client, templatesFS, staticFS fs.FS, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	schemas, err := schema.NewStore(log, cfg.SchemaPath)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to load inspection schema: %w", err)
	}

	// Initialize services
	settingsService := services.NewSettingsService(log, repo)
	catalogService := services.NewCatalogService(log, repo, client)
	holderService := services.NewHolderService(log, repo, client)
	vehicleService := services.NewVehicleService(log, repo, client)
	inspectionService := services.NewInspectionService(log, repo, schemas, catalogService, client)

	// A reset may empty the catalog table underneath the cached copy
	settingsService.OnReset(func([]string) { catalogService.Invalidate() })

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, inspectionService)
	hub.Start()
	catalogService.SetBroadcaster(hub)
	inspectionService.SetBroadcaster(hub)
	schemas.OnLoad(func(f *schema.File) { hub.BroadcastSchemaReloaded(f.Name, f.Version) })

	// Background workers stop on Close
	ctx, cancel := context.WithCancel(context.Background())
	go hub.StartStatsTicker(ctx, statsInterval)
	go func() {
		if err := schemas.Watch(ctx); err != nil {
			log.Warn("Schema hot reload disabled", "path", schemas.Path(), "error", err)
		}
	}()

	staticServer := handlers.NewStaticServer(staticFS)

	h, err := handlers.New(handlers.Services{
		Holder:     holderService,
		Vehicle:    vehicleService,
		Catalog:    catalogService,
		Inspection: inspectionService,
		Settings:   settingsService,
	}, templatesFS, staticServer, adminAuth, hub, log)
	if err != nil {
		cancel()
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		log:      log,
		handlers: h,
		repo:     repo,
		schemas:  schemas,
		cancel:   cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close stops background workers and closes the database
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	// Set default base URL if not configured, using detected LAN IP
	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, addr)
	a.setDefaultBaseURL(baseURL)

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Admin URL", "url", baseURL+"/admin")
	return http.ListenAndServe(addr, a.Router())
}

// setDefaultBaseURL sets the base URL used in sticker QR codes if not already
// configured or if the current value uses localhost (unreachable from a phone)
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.repo.GetSetting(ctx, "base_url")

	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if needsUpdate {
		if err := a.repo.SetSetting(ctx, "base_url", baseURL); err != nil {
			a.log.Warn("Failed to set default base_url", "error", err)
		} else {
			a.log.Info("Default base URL set", "url", baseURL)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
