/*
Copyright (c) 2025 Mike Lane

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	moderationv1alpha1 "github.com/mikelane/codey/api/v1alpha1"
	"github.com/mikelane/codey/internal/config"
	"github.com/mikelane/codey/internal/controller"
	"github.com/mikelane/codey/internal/github"
	"github.com/mikelane/codey/internal/webhook"
)

type serveOptions struct {
	webhookAddr     string
	webhookSecret   string
	token           string
	appKeyPath      string
	apiURL          string
	metricsAddr     string
	probeAddr       string
	policyNamespace string
	zapOpts         zap.Options
	appID           int64
	webhookPort     int
	leaderElect     bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{
		zapOpts: zap.Options{Development: true},
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve GitHub webhooks and reconcile moderation policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts.zapOpts)))
			return serve(cmd.Context(), opts)
		},
	}

	appID, _ := strconv.ParseInt(envOr("GITHUB_APP_ID", "0"), 10, 64)

	cmd.Flags().StringVar(&opts.webhookAddr, "webhook-addr", "0.0.0.0", "Address the webhook server binds to")
	cmd.Flags().IntVar(&opts.webhookPort, "webhook-port", 8080, "Port the webhook server listens on")
	cmd.Flags().StringVar(&opts.webhookSecret, "webhook-secret", envOr("GITHUB_WEBHOOK_SECRET", ""), "Webhook secret used to verify deliveries [GITHUB_WEBHOOK_SECRET]")
	cmd.Flags().StringVar(&opts.token, "github-token", envOr("GITHUB_TOKEN", ""), "Personal access token, used when no GitHub App is configured [GITHUB_TOKEN]")
	cmd.Flags().Int64Var(&opts.appID, "github-app-id", appID, "GitHub App ID [GITHUB_APP_ID]")
	cmd.Flags().StringVar(&opts.appKeyPath, "github-app-private-key", envOr("GITHUB_APP_PRIVATE_KEY_PATH", ""), "Path to the GitHub App private key [GITHUB_APP_PRIVATE_KEY_PATH]")
	cmd.Flags().StringVar(&opts.apiURL, "github-api-url", envOr("GITHUB_API_URL", ""), "GitHub API base URL, for GitHub Enterprise Server [GITHUB_API_URL]")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-bind-address", ":8443", "The address the metrics endpoint binds to. Use 0 to disable")
	cmd.Flags().StringVar(&opts.probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to")
	cmd.Flags().StringVar(&opts.policyNamespace, "policy-namespace", envOr("POD_NAMESPACE", ""), "Only read ModerationPolicy objects from this namespace. Empty reads all namespaces")
	cmd.Flags().BoolVar(&opts.leaderElect, "leader-elect", false, "Enable leader election for the policy controller")

	goflags := flag.NewFlagSet("zap", flag.ContinueOnError)
	opts.zapOpts.BindFlags(goflags)
	cmd.Flags().AddGoFlagSet(goflags)

	return cmd
}

func serve(ctx context.Context, opts *serveOptions) error {
	setupLog := ctrl.Log.WithName("setup")

	if opts.webhookSecret == "" {
		return errors.New("a webhook secret is required (--webhook-secret or GITHUB_WEBHOOK_SECRET)")
	}

	clients, err := newClientProvider(opts)
	if err != nil {
		return err
	}

	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(moderationv1alpha1.AddToScheme(scheme))

	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	mgrOpts := ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: opts.metricsAddr},
		HealthProbeBindAddress: opts.probeAddr,
		LeaderElection:         opts.leaderElect,
		LeaderElectionID:       "codeyd.moderation.codey.io",
	}
	if opts.policyNamespace != "" {
		mgrOpts.Cache = cache.Options{
			DefaultNamespaces: map[string]cache.Config{opts.policyNamespace: {}},
		}
	}

	mgr, err := ctrl.NewManager(restConfig, mgrOpts)
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}

	if err := (&controller.ModerationPolicyReconciler{
		Client: mgr.GetClient(),
		Scheme: mgr.GetScheme(),
	}).SetupWithManager(mgr); err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	policies := config.NewClusterPolicies(mgr.GetClient(), opts.policyNamespace)
	server := webhook.NewServer(opts.webhookAddr, opts.webhookPort, opts.webhookSecret, clients, policies)
	if err := mgr.Add(server); err != nil {
		return fmt.Errorf("failed to add webhook server: %w", err)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		return fmt.Errorf("failed to set up health check: %w", err)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		return fmt.Errorf("failed to set up ready check: %w", err)
	}

	setupLog.Info("Starting manager", "version", Version, "webhookPort", opts.webhookPort)
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("problem running manager: %w", err)
	}
	return nil
}

// newClientProvider authenticates as a GitHub App when one is configured,
// falling back to the personal access token for deliveries without an installation.
func newClientProvider(opts *serveOptions) (github.ClientProvider, error) {
	var clientOpts []github.Option
	if opts.apiURL != "" {
		clientOpts = append(clientOpts, github.WithBaseURL(opts.apiURL))
	}

	var tokenClient github.Client
	if opts.token != "" {
		client, err := github.NewClient(opts.token, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client: %w", err)
		}
		tokenClient = client
	}

	if opts.appID == 0 {
		if tokenClient == nil {
			return nil, errors.New("GitHub credentials are required (--github-app-id or --github-token)")
		}
		return github.StaticProvider(tokenClient), nil
	}

	key, err := os.ReadFile(opts.appKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read GitHub App private key: %w", err)
	}
	app, err := github.NewApp(opts.appID, key, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App: %w", err)
	}
	if tokenClient != nil {
		app = app.WithFallback(tokenClient)
	}
	return app, nil
}
