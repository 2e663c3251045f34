package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kitbuilder587/deepseek-go/deepseek"
	"github.com/kitbuilder587/deepseek-go/internal/config"
)

type chatOptions struct {
	model       string
	system      string
	temperature float32
	maxTokens   int
	jsonOutput  bool
	each        bool
	parallel    int
}

func newChatCmd() *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat [flags] PROMPT...",
		Short: "Send a single chat completion request",
		Long: `Send a single chat completion request and print the reply.

Examples:
  deepseek chat Hi
  deepseek chat --model reasoner "Why is the sky blue?"
  deepseek chat --system "Answer in one word" --json "Capital of Sweden?"
  deepseek chat --each --parallel 2 "Hi" "Hej" "Hola"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.model, "model", "", "model: chat, reasoner or a full model name (default from profile, else deepseek-chat)")
	cmd.Flags().StringVar(&opts.system, "system", "", "system message (overrides the profile)")
	cmd.Flags().Float32Var(&opts.temperature, "temperature", 0, "sampling temperature")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "max tokens to generate")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the full response as JSON")
	cmd.Flags().BoolVar(&opts.each, "each", false, "send every argument as a separate prompt")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 4, "max concurrent requests with --each (0 = unbounded)")

	return cmd
}

func runChat(cmd *cobra.Command, opts *chatOptions, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	profile, err := config.LoadProfile(cfg.Profile)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	model := profile.ModelOr(deepseek.ModelChat)
	if opts.model != "" {
		model, err = deepseek.ParseModel(opts.model)
		if err != nil {
			return exitWithCode(ExitValidation, err)
		}
	}

	if cmd.Flags().Changed("max-tokens") && opts.maxTokens <= 0 {
		return exitWithCode(ExitValidation, errors.New("--max-tokens must be positive"))
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	defer logger.Sync()

	client, err := deepseek.New(cfg.ClientConfig(), logger)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	if opts.system != "" {
		profile.System = opts.system
	}
	b := profile.Apply(client.Chat().Model(model))
	if cmd.Flags().Changed("temperature") {
		b = b.Temperature(opts.temperature)
	}
	if cmd.Flags().Changed("max-tokens") {
		b = b.MaxTokens(opts.maxTokens)
	}

	if opts.each {
		return runEach(cmd, opts, client, b, args)
	}

	resp, err := b.User(strings.Join(args, " ")).Send(cmd.Context())
	if err != nil {
		return handleChatError(cmd, opts, err)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintln(out, resp.Content())
	return nil
}

// runEach отправляет каждый prompt отдельным запросом с общими параметрами.
func runEach(cmd *cobra.Command, opts *chatOptions, client *deepseek.Client, b deepseek.ChatBuilder, prompts []string) error {
	reqs := make([]deepseek.ChatRequest, len(prompts))
	for i, p := range prompts {
		reqs[i] = b.User(p).Build()
	}

	resps, err := client.SendAll(cmd.Context(), reqs, opts.parallel)
	if err != nil {
		return handleChatError(cmd, opts, err)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resps)
	}

	for i, resp := range resps {
		fmt.Fprintf(out, "> %s\n%s\n", prompts[i], resp.Content())
	}
	return nil
}

func handleChatError(cmd *cobra.Command, opts *chatOptions, err error) error {
	code := ExitService
	switch deepseek.KindOf(err) {
	case deepseek.KindMissingCredential:
		code = ExitValidation
	case deepseek.KindNetwork:
		code = ExitNetwork
	}

	if !opts.jsonOutput {
		return exitWithCode(code, err)
	}

	payload := map[string]interface{}{
		"type":    deepseek.KindOf(err).String(),
		"message": err.Error(),
	}
	var e *deepseek.Error
	if errors.As(err, &e) && e.Status != 0 {
		payload["status"] = e.Status
	}

	enc := json.NewEncoder(cmd.ErrOrStderr())
	enc.SetIndent("", "  ")
	enc.Encode(map[string]interface{}{"error": payload})

	return &exitError{code: code, err: err, reported: true}
}
