package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"soul-agent/internal/config"
	"soul-agent/internal/domain"
	"soul-agent/internal/service"
)

func newScenarioCmd() *cobra.Command {
	var in domain.ScenarioInput
	cmd := &cobra.Command{
		Use:   "scenario [texto]",
		Short: "Estructura un escenario libre en oponente, objetivo y flujo",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				in.ScenarioText = args[0]
			}
			if in.Mode != "" && in.Mode != domain.ScenarioModeFull && in.Mode != domain.ScenarioModeGoalOnly {
				return fmt.Errorf("modo invalido %q", in.Mode)
			}
			in.Normalize()
			c, err := loadCoach(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c.scenario.Analyze(cmd.Context(), in))
		},
	}
	cmd.Flags().StringVar(&in.Mode, "mode", domain.ScenarioModeFull, "full | goal_only")
	cmd.Flags().StringVar(&in.OpponentHint, "opponent", "", "pista sobre el interlocutor")
	cmd.Flags().StringVar(&in.UserGoalHint, "goal", "", "pista sobre el objetivo del usuario")
	cmd.Flags().StringSliceVar(&in.OpponentTraits, "trait", nil, "rasgo del interlocutor (repetible)")
	return cmd
}

func newMBTICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mbti",
		Short: "Cuestionario MBTI e inferencia a partir de un chat",
	}

	var mode string
	quiz := &cobra.Command{
		Use:   "quiz",
		Short: "Responde el cuestionario (1 = nada de acuerdo, 5 = muy de acuerdo)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mode != domain.MBTIModeQuick && mode != domain.MBTIModeDeep {
				return fmt.Errorf("modo invalido %q", mode)
			}
			// El cuestionario es local: no necesita credenciales del LLM.
			persona := service.NewPersonaService(nil, nil)
			res, err := runQuiz(cmd.InOrStdin(), cmd.OutOrStdout(), persona, mode)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	quiz.Flags().StringVar(&mode, "mode", domain.MBTIModeQuick, "quick | deep")

	var file string
	infer := &cobra.Command{
		Use:   "infer",
		Short: "Infiere el MBTI desde un JSON con la conversacion ([{role,text}])",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conv, err := readConversation(file)
			if err != nil {
				return err
			}
			c, err := loadCoach(cmd.Context())
			if err != nil {
				return err
			}
			res, err := c.persona.InferMBTI(cmd.Context(), conv)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	infer.Flags().StringVarP(&file, "file", "f", "-", "ruta del JSON o - para stdin")

	cmd.AddCommand(quiz, infer)
	return cmd
}

func runQuiz(in io.Reader, out io.Writer, persona *service.PersonaService, mode string) (domain.MBTISubmitResponse, error) {
	reader := bufio.NewReader(in)
	questions := persona.Questions(mode)
	answers := make([]domain.MBTIAnswer, 0, len(questions))
	for i, q := range questions {
		for {
			fmt.Fprintf(out, "%s[%d/%d]%s %s (1-5): ", colorCyan, i+1, len(questions), colorReset, q.Text)
			line, err := reader.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return domain.MBTISubmitResponse{}, fmt.Errorf("leer respuesta: %w", err)
			}
			v, convErr := strconv.Atoi(strings.TrimSpace(line))
			if convErr == nil && v >= 1 && v <= 5 {
				answers = append(answers, domain.MBTIAnswer{Dim: q.Dim, Value: v, Reverse: q.Reverse})
				break
			}
			if errors.Is(err, io.EOF) {
				return domain.MBTISubmitResponse{}, fmt.Errorf("cuestionario incompleto: %d/%d respuestas", len(answers), len(questions))
			}
			fmt.Fprintln(out, "Respuesta invalida.")
		}
	}
	return persona.SubmitMBTI(domain.MBTISubmitRequest{Answers: answers, Mode: mode}), nil
}

func readConversation(path string) ([]domain.ConversationTurn, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var conv []domain.ConversationTurn
	if err := json.NewDecoder(r).Decode(&conv); err != nil {
		return nil, fmt.Errorf("decodificar conversacion: %w", err)
	}
	for i, t := range conv {
		if t.Role != domain.RoleUser && t.Role != domain.RolePeer {
			return nil, fmt.Errorf("turno %d: rol invalido %q", i, t.Role)
		}
	}
	return conv, nil
}

func newTokenCmd() *cobra.Command {
	var (
		client string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un token de API firmado con API_JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			tok, err := issueToken(cfg.APIJWTSecret, client, ttl)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tok)
		},
	}
	cmd.Flags().StringVar(&client, "client", "cli", "identificador del cliente")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "validez del token")
	return cmd
}

func issueToken(secret, client string, ttl time.Duration) (service.APIToken, error) {
	jwtSvc := service.NewJWTService(secret, ttl)
	if !jwtSvc.Enabled() {
		return service.APIToken{}, errors.New("API_JWT_SECRET no configurado")
	}
	return jwtSvc.Issue(client)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
