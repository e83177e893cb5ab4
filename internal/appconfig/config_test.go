package appconfig_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/calebmoore/tweetwatch/internal/appconfig"
)

var _ = Describe("Config", func() {
	envKeys := []string{
		"TRACKED_HANDLES",
		"REFERENCE_ACCOUNT_ID",
		"COLLECTION_SCHEDULE",
		"LISTEN_ADDR",
		"POST_RETENTION_DAYS",
	}

	BeforeEach(func() {
		for _, key := range envKeys {
			os.Unsetenv(key)
		}
	})

	AfterEach(func() {
		for _, key := range envKeys {
			os.Unsetenv(key)
		}
	})

	It("parses a comma-separated handle list, dropping @ prefixes", func() {
		os.Setenv("TRACKED_HANDLES", "@alice, bob ,,  @carol")

		cfg, err := appconfig.NewConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.TrackedHandles).To(Equal([]string{"alice", "bob", "carol"}))
	})

	It("applies schedule and address defaults", func() {
		os.Setenv("TRACKED_HANDLES", "alice")

		cfg, err := appconfig.NewConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.CollectionSchedule).To(Equal(appconfig.DefaultCollectionSchedule))
		Expect(cfg.ListenAddr).To(Equal(appconfig.DefaultListenAddr))
		Expect(cfg.PostRetentionDays).To(BeZero())
	})

	It("accepts a reference account with no seed handles", func() {
		os.Setenv("REFERENCE_ACCOUNT_ID", "u1")

		cfg, err := appconfig.NewConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.ReferenceAccountID).To(Equal("u1"))
	})

	It("fails when neither seed handles nor a reference account are set", func() {
		_, err := appconfig.NewConfig()
		Expect(err).To(HaveOccurred())
	})

	It("rejects a negative retention window", func() {
		os.Setenv("TRACKED_HANDLES", "alice")
		os.Setenv("POST_RETENTION_DAYS", "-3")

		_, err := appconfig.NewConfig()
		Expect(err).To(HaveOccurred())
	})
})
