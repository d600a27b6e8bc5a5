package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arbiterlabs/symposium/internal/config"
	"github.com/arbiterlabs/symposium/internal/domain"
	"github.com/arbiterlabs/symposium/internal/engine"
	"github.com/arbiterlabs/symposium/internal/llm"
	"github.com/arbiterlabs/symposium/internal/store"
)

func newRunCmd() *cobra.Command {
	var (
		participants []string
		moderatorID  string
		modPrompt    string
		rounds       int
		maxDuration  int
		requirements string
		temperature  float64
		maxTokens    int
		dbPath       string
	)

	cmd := &cobra.Command{
		Use:   "run <topic>",
		Short: "Run a debate on a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if issues := config.Validate(&cfg); len(issues) > 0 {
				for _, issue := range issues {
					fmt.Fprintf(os.Stderr, "config issue: %s\n", issue)
				}
				return fmt.Errorf("config has %d issue(s)", len(issues))
			}

			sink, cleanup, err := openSink(cfg, dbPath)
			if err != nil {
				return err
			}
			defer cleanup()

			gen := cfg.Defaults.Generation
			if cmd.Flags().Changed("temperature") {
				gen.Temperature = llm.Float64(temperature)
			}
			if cmd.Flags().Changed("max-tokens") {
				gen.MaxTokens = maxTokens
			}

			req := engine.StartRequest{
				Topic:                  args[0],
				ParticipantIDs:         participants,
				ModeratorID:            moderatorID,
				ModeratorPrompt:        modPrompt,
				Rounds:                 rounds,
				MaxDurationMins:        maxDuration,
				ConclusionRequirements: requirements,
				Generation:             gen,
			}
			if req.Rounds == 0 {
				req.Rounds = cfg.Defaults.Rounds
			}
			if req.MaxDurationMins == 0 {
				req.MaxDurationMins = cfg.Defaults.MaxDurationMinutes
			}

			o := engine.New(engine.Deps{
				Clients:      llm.NewCache(nil, log),
				ClientConfig: clientConfig(cfg),
				Directory:    engine.NewStaticDirectory(configuredParticipants(cfg)),
				Sink:         sink,
				Topics:       topicAssigner(cfg),
				Order:        orderPolicy(cfg),
				Observer:     printTurn,
				Log:          log,
			})

			id, err := o.Start(cmd.Context(), req)
			if err != nil {
				return err
			}

			session, err := sink.GetSession(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("\nSession:  %s\n", session.ID)
			fmt.Printf("Status:   %s\n", session.Status)
			if session.Conclusion != nil {
				printConclusion(session.Conclusion)
			}
			if session.Status != domain.StatusCompleted {
				return fmt.Errorf("debate ended with status %s", session.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&participants, "participants", "p", nil, "participant agent ids (comma separated)")
	cmd.Flags().StringVarP(&moderatorID, "moderator", "m", "", "moderator agent id")
	cmd.Flags().StringVar(&modPrompt, "moderator-prompt", "", "override the moderator's system prompt")
	cmd.Flags().IntVarP(&rounds, "rounds", "r", 0, "number of debate rounds (default from config)")
	cmd.Flags().IntVar(&maxDuration, "max-duration", 0, "maximum debate duration in minutes (default from config)")
	cmd.Flags().StringVar(&requirements, "requirements", "", "extra requirements for the conclusion")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "generation temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "generation token limit per turn")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (overrides config; empty config keeps sessions in memory)")
	cmd.MarkFlagRequired("participants")

	return cmd
}

// openSink chooses persistence: a SQLite store when a path is configured,
// otherwise an in-memory sink that lives for this invocation only.
func openSink(cfg config.Config, override string) (engine.Sink, func(), error) {
	path := cfg.Store.Path
	if override != "" {
		path = override
	}
	if path == "" {
		return engine.NewMemorySink(), func() {}, nil
	}

	db, err := store.Open(path, log)
	if err != nil {
		return nil, nil, err
	}
	return store.NewDebateStore(db), func() { db.Close() }, nil
}

func clientConfig(cfg config.Config) llm.ClientConfig {
	return llm.ClientConfig{
		Provider: cfg.Provider.Name,
		Model:    cfg.Provider.Model,
		BaseURL:  cfg.Provider.BaseURL,
		APIKey:   cfg.Provider.APIKey,
	}
}

func configuredParticipants(cfg config.Config) []domain.Participant {
	out := make([]domain.Participant, len(cfg.Agents))
	for i, a := range cfg.Agents {
		out[i] = domain.Participant{
			ID:           a.ID,
			Name:         a.Name,
			Role:         a.Role,
			SystemPrompt: a.SystemPrompt,
		}
	}
	return out
}

func topicAssigner(cfg config.Config) engine.RoundTopicAssigner {
	if len(cfg.Debate.SubTopics) == 0 {
		return nil
	}
	return engine.FocusedTopicAssigner{SubTopics: cfg.Debate.SubTopics}
}

func orderPolicy(cfg config.Config) engine.SpeakingOrderPolicy {
	if len(cfg.Debate.Leads) == 0 {
		return nil
	}
	return engine.RoleLeadOrderPolicy{Leads: cfg.Debate.Leads}
}

func printTurn(msg domain.Message) {
	tag := msg.SpeakerName
	if msg.SpeakerRole != "" {
		tag = fmt.Sprintf("%s (%s)", msg.SpeakerName, msg.SpeakerRole)
	}
	fmt.Printf("\n--- round %d | %s ---\n%s\n", msg.Round, tag, msg.Content)
}

func printConclusion(c *domain.ConclusionResult) {
	fmt.Printf("\n=== Conclusion (confidence %.2f) ===\n%s\n", c.ConfidenceScore, c.FinalConclusion)
	printList("Consensus", c.ConsensusPoints)
	printList("Divergent views", c.DivergentViews)
	for role, args := range c.KeyArguments {
		printList("Key arguments: "+role, args)
	}
	printList("Preliminary insights", c.PreliminaryInsights)
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}
