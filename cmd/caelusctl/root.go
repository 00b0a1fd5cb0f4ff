package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/caelus-deploy/caelus/pkg/config"
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/operator"
	"github.com/caelus-deploy/caelus/services/admin/application/services"
	"github.com/caelus-deploy/caelus/services/admin/domain"
	"github.com/caelus-deploy/caelus/services/admin/infrastructure/gateway"
)

const (
	envGateway = "CAELUS_GATEWAY_URL"
	envEmail   = "CAELUS_OPERATOR_EMAIL"
)

// Exit codes by error class.
const (
	exitFailure    = 1
	exitNotFound   = 3
	exitValidation = 4
	exitTransport  = 5
)

type rootOptions struct {
	gatewayURL string
	email      string
	timeout    time.Duration
	jsonOut    bool
	verbose    bool

	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "caelusctl",
		Short: "Manage Caelus products, users and deployments",
		Long: `Manage template versions and canonical templates of Caelus products,
and the users and deployments built from them.

Creating the first template of a product makes it canonical. Deleting the
canonical template promotes the newest remaining one. Creating, upgrading
or deleting a deployment queues a reconcile job; a deployment with an open
job rejects further changes until the worker finishes it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.gatewayURL, "gateway", envOr(envGateway, "http://localhost:8080/api"), "gateway base URL ($"+envGateway+")")
	flags.StringVar(&opts.email, "email", os.Getenv(envEmail), "operator email forwarded to the gateway ($"+envEmail+")")
	flags.DurationVar(&opts.timeout, "timeout", gateway.DefaultTimeout, "per-request timeout")
	flags.BoolVar(&opts.jsonOut, "json", false, "print JSON instead of tables")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log gateway requests to stderr")

	root.AddCommand(
		newProductsCmd(opts),
		newTemplatesCmd(opts),
		newCanonicalCmd(opts),
		newUsersCmd(opts),
		newDeploymentsCmd(opts),
		newJobsCmd(opts),
	)
	return root
}

// services builds the admin services and attaches the operator identity to ctx.
func (o *rootOptions) services(ctx context.Context) (context.Context, *services.Services, error) {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(&config.Config{LogLevel: level}, o.errOut)

	gw, err := gateway.New(o.gatewayURL, gateway.WithTimeout(o.timeout), gateway.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	if o.email != "" {
		email, err := operator.Normalize(o.email)
		if err != nil {
			return nil, nil, fmt.Errorf("--email: %w", err)
		}
		ctx = operator.WithEmail(ctx, email)
	}
	return ctx, services.NewWithAccounts(gw, gw, log), nil
}

func (o *rootOptions) printJSON(v any) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrValidationFailed, name, raw)
	}
	return id, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return exitNotFound
	case errors.Is(err, domain.ErrValidationFailed):
		return exitValidation
	case errors.Is(err, domain.ErrTransportFailure):
		return exitTransport
	default:
		return exitFailure
	}
}
