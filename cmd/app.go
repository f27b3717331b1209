package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/bill-transformer/internal/classifier"
	"github.com/ginjaninja78/bill-transformer/internal/config"
	"github.com/ginjaninja78/bill-transformer/internal/converter"
	"github.com/ginjaninja78/bill-transformer/internal/formats"
	"github.com/ginjaninja78/bill-transformer/internal/logger"
	"github.com/ginjaninja78/bill-transformer/internal/validation"
)

// app holds everything a command needs to convert bills.
type app struct {
	cfg        *config.MainConfig
	log        zerolog.Logger
	closeLog   func() error
	classifier *classifier.Classifier
	attributor *classifier.Attributor
	pipeline   *converter.Pipeline

	// keywordProblems are the keyword table warnings found while loading.
	keywordProblems *validation.ValidationResult
}

// newApp loads the configuration, opens the log and builds the pipeline.
// The caller must call close.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logger.Open(cfg.LogLevel, os.Stderr, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, closeLog: closeLog}
	if err := a.build(); err != nil {
		closeLog()
		return nil, err
	}
	return a, nil
}

// build assembles the classifier, attributor and pipeline from a.cfg.
func (a *app) build() error {
	var keywordFile *config.KeywordFile
	if a.cfg.KeywordsFile != "" {
		kf, err := config.LoadKeywords(a.cfg.KeywordsFile)
		if err != nil {
			return err
		}
		keywordFile = kf
	}

	table, problems := validation.KeywordTable(keywordFile)
	if !problems.IsValid {
		return fmt.Errorf("invalid keyword table:\n%s", validation.FormatErrors(problems.Errors))
	}
	for _, p := range problems.Errors {
		a.log.Warn().Str("field", p.Field).Str("rule", p.Rule).Msg(p.Message)
	}

	// Member overrides are fixed; only keywords and column maps are configurable.
	overrides := classifier.DefaultMemberOverrides()

	registry, err := formats.NewRegistry(a.cfg.Formats)
	if err != nil {
		return err
	}

	a.classifier = classifier.New(table)
	a.attributor = classifier.NewAttributor(overrides)
	a.pipeline = converter.NewPipeline(registry, converter.NewRowTransformer(a.classifier, a.attributor))
	a.keywordProblems = problems

	a.log.Debug().
		Int("keywords", a.classifier.Len()).
		Int("member_overrides", len(overrides)).
		Msg("pipeline ready")
	return nil
}

// member returns flagValue or the configured default member.
func (a *app) member(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return a.cfg.DefaultMember
}

func (a *app) close() {
	a.closeLog()
}
