// Optional remote-exposure modes for the debug server: --expose=ngrok
// tunnels it with golang.ngrok.com/ngrok, --expose=tls --domain=...
// auto-provisions a cert with github.com/caddyserver/certmagic.
// Neither touches the rendering core. Off by default.
package httpapi

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/caddyserver/certmagic"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokconfig "golang.ngrok.com/ngrok/config"
)

// ExposeMode selects how Serve makes the debug server reachable.
type ExposeMode string

const (
	ExposeNone  ExposeMode = "none"
	ExposeNgrok ExposeMode = "ngrok"
	ExposeTLS   ExposeMode = "tls"
)

// ServeOptions configures Serve's listener selection.
type ServeOptions struct {
	Mode      ExposeMode
	Addr      string // local bind address for ExposeNone/ExposeTLS
	Domain    string // required for ExposeTLS (certmagic managed domain)
	NgrokAuth string // ngrok authtoken, required for ExposeNgrok
}

// Serve runs srv's handler according to opts, blocking until ctx is
// canceled or a fatal listener error occurs.
func Serve(ctx context.Context, log *zap.Logger, srv *Server, opts ServeOptions) error {
	if log == nil {
		log = zap.NewNop()
	}
	switch opts.Mode {
	case ExposeNgrok:
		return serveNgrok(ctx, log, srv, opts)
	case ExposeTLS:
		return serveTLS(ctx, log, srv, opts)
	default:
		return serveLocal(ctx, srv, opts)
	}
}

func serveLocal(ctx context.Context, srv *Server, opts ServeOptions) error {
	httpSrv := &http.Server{Addr: opts.Addr, Handler: srv.Handler()}
	go func() {
		<-ctx.Done()
		httpSrv.Close()
	}()
	return httpSrv.ListenAndServe()
}

// serveNgrok tunnels the debug server through an ngrok edge.
func serveNgrok(ctx context.Context, log *zap.Logger, srv *Server, opts ServeOptions) error {
	if opts.NgrokAuth == "" {
		return fmt.Errorf("httpapi: ngrok expose mode requires an authtoken")
	}
	ln, err := ngrok.Listen(ctx,
		ngrokconfig.HTTPEndpoint(),
		ngrok.WithAuthtoken(opts.NgrokAuth),
	)
	if err != nil {
		return fmt.Errorf("httpapi: ngrok listen: %w", err)
	}
	log.Info("httpapi: ngrok tunnel established", zap.String("url", ln.URL()))
	return http.Serve(ln, srv.Handler())
}

// serveTLS auto-provisions a certificate for opts.Domain via certmagic
// and serves over TLS.
func serveTLS(ctx context.Context, log *zap.Logger, srv *Server, opts ServeOptions) error {
	if opts.Domain == "" {
		return fmt.Errorf("httpapi: tls expose mode requires --domain")
	}
	tlsConfig, err := certmagic.TLS([]string{opts.Domain})
	if err != nil {
		return fmt.Errorf("httpapi: certmagic: %w", err)
	}
	ln, err := tls.Listen("tcp", opts.Addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("httpapi: tls listen: %w", err)
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	log.Info("httpapi: serving TLS", zap.String("domain", opts.Domain))
	return http.Serve(ln, srv.Handler())
}
