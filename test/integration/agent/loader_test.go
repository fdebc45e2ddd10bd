// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package agent_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/holotrace/internal/agent"
	"github.com/holomush/holotrace/internal/config"
	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/internal/integration"
)

type countingInit struct {
	calls  *int
	result integration.Status
}

func (c countingInit) Init() integration.Status {
	*c.calls++
	return c.result
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = Describe("Activation passes", func() {
	var (
		constructed int
		initCalls   int
		staticCalls int
		registry    *integration.Registry
	)

	BeforeEach(func() {
		constructed, initCalls, staticCalls = 0, 0, 0
		registry = integration.MustRegistry(
			integration.Stateful("X", func() integration.Initializer {
				constructed++
				return countingInit{calls: &initCalls, result: integration.Loaded}
			}),
			integration.Static("Y", func() integration.Status {
				staticCalls++
				return integration.NotAvailable
			}),
		)
	})

	It("activates each integration once across passes", func() {
		l := integration.NewLoader(registry,
			integration.WithProbe(integration.ProbeFunc(func() bool { return true })),
			integration.WithLogger(quietLogger()),
		)

		l.LoadAll()
		l.LoadAll()

		Expect(constructed).To(Equal(1))
		Expect(initCalls).To(Equal(1))
		Expect(staticCalls).To(Equal(1))
		Expect(l.Status("X")).To(Equal(integration.Loaded))
		Expect(l.Status("Y")).To(Equal(integration.NotAvailable))
		Expect(l.Settled()).To(BeTrue())
	})

	It("does nothing while tracing is disabled", func() {
		l := integration.NewLoader(registry,
			integration.WithConfig(&integration.StaticConfig{TracingDisabled: true}),
			integration.WithProbe(integration.ProbeFunc(func() bool { return true })),
			integration.WithLogger(quietLogger()),
		)

		l.LoadAll()

		Expect(constructed).To(BeZero())
		Expect(staticCalls).To(BeZero())
		Expect(l.Status("X")).To(Equal(integration.NotLoaded))
		Expect(l.Status("Y")).To(Equal(integration.NotLoaded))
	})

	Context("with file configuration", func() {
		var cfg *config.Config

		BeforeEach(func() {
			path := filepath.Join(GinkgoT().TempDir(), "holotrace.yaml")
			Expect(os.WriteFile(path, []byte("integrations:\n  disabled: [\"X*\"]\n"), 0o600)).To(Succeed())

			var err error
			cfg, err = config.New(config.WithFile(path))
			Expect(err).NotTo(HaveOccurred())
		})

		It("skips disabled integrations until re-enabled at runtime", func() {
			l := integration.NewLoader(registry,
				integration.WithConfig(cfg),
				integration.WithProbe(integration.ProbeFunc(func() bool { return true })),
				integration.WithLogger(quietLogger()),
			)

			l.LoadAll()
			Expect(constructed).To(BeZero())
			Expect(staticCalls).To(Equal(1))

			Expect(cfg.Set(config.KeyIntegrationsEnable, []string{"X"})).To(Succeed())
			l.LoadAll()
			Expect(constructed).To(Equal(1))
			Expect(l.Status("X")).To(Equal(integration.Loaded))
		})
	})

	Context("through the process-wide holder", func() {
		BeforeEach(func() {
			DeferCleanup(hook.SetDefault(hook.NewTable()))
			agent.Configure(
				integration.WithConfig(&integration.StaticConfig{}),
				integration.WithLogger(quietLogger()),
			)
			DeferCleanup(func() { agent.Configure() })
		})

		It("keeps statuses across Reset and forgets them on Reload", func() {
			agent.Load()
			Expect(agent.Status("webkernel")).To(Equal(integration.Loaded))

			agent.Reset()
			Expect(agent.Get().Integrations()).To(BeEmpty())
			Expect(agent.Status("webkernel")).To(Equal(integration.Loaded))

			first := agent.Get().ID()
			agent.Reload()
			Expect(agent.Get().ID()).NotTo(Equal(first))
			Expect(agent.Get().Integrations()).To(HaveLen(3))
		})
	})
})
