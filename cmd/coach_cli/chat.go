package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"soul-agent/internal/domain"
	"soul-agent/internal/service"
)

type chatOptions struct {
	scenarioText string
	style        string
	roleTitle    string
	mbti         string
}

func newChatCmd() *cobra.Command {
	var opts chatOptions
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactivo: tu escribes, el interlocutor responde y recibes sugerencias",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadCoach(cmd.Context())
			if err != nil {
				return err
			}
			defer c.logger.Sync()
			return runChat(cmd.Context(), c, os.Stdin, os.Stdout, opts)
		},
	}
	cmd.Flags().StringVar(&opts.scenarioText, "scenario", "", "descripcion libre del escenario a practicar")
	cmd.Flags().StringVar(&opts.style, "style", "", "estilo del interlocutor (自然/活泼/理性/温和/专业/俏皮/克制)")
	cmd.Flags().StringVar(&opts.roleTitle, "role", "", "rol del interlocutor, p. ej. 面试官")
	cmd.Flags().StringVar(&opts.mbti, "mbti", "", "tipo MBTI propio para orientar las sugerencias")
	return cmd
}

// chatSession guarda el estado de una practica en memoria.
type chatSession struct {
	id         string
	conv       []domain.ConversationTurn
	scenario   *domain.ScenarioContext
	opponent   *domain.OpponentProfile
	weights    *domain.PersonaWeights
	candidates []domain.Candidate
}

func newChatSession(ctx context.Context, c *coach, opts chatOptions) *chatSession {
	s := &chatSession{id: uuid.NewString()}
	if strings.TrimSpace(opts.scenarioText) != "" {
		sc := c.scenario.Analyze(ctx, domain.ScenarioInput{ScenarioText: opts.scenarioText, Mode: domain.ScenarioModeFull})
		s.scenario = &sc
	}
	opp := domain.OpponentProfile{Style: opts.style, RoleTitle: opts.roleTitle}
	if !opp.IsZero() {
		s.opponent = &opp
	}
	if opts.mbti != "" {
		w := domain.WeightsFromFunctions(service.FunctionsFromMBTI(opts.mbti), true)
		s.weights = &w
	}
	return s
}

func runChat(ctx context.Context, c *coach, in io.Reader, out io.Writer, opts chatOptions) error {
	reader := bufio.NewReader(in)
	s := newChatSession(ctx, c, opts)
	c.logger.Info("chat session started", zap.String("session_id", s.id), zap.Bool("scenario", s.scenario != nil))

	if s.scenario != nil && s.scenario.Scenario != "" {
		fmt.Fprintf(out, "%s[Escenario]%s %s\n", colorCyan, colorReset, s.scenario.Scenario)
	}
	if s.scenario.StartingParty() == domain.PartyOpponent {
		s.peerTurn(ctx, c, out)
	}

	fmt.Fprintln(out, "---- Modo practica (/s borrador = sugerencias, /p = que hable el otro, 1-3 = enviar sugerencia, /q = salir) ----")
	for {
		fmt.Fprint(out, "Tu > ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("leer input: %w", err)
		}
		eof := errors.Is(err, io.EOF)
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			if eof {
				return nil
			}
			continue
		case line == "/q" || strings.EqualFold(line, "salir"):
			return nil
		case line == "/p":
			s.peerTurn(ctx, c, out)
		case strings.HasPrefix(line, "/s"):
			s.suggestTurn(ctx, c, out, strings.TrimSpace(strings.TrimPrefix(line, "/s")), domain.EntryPreSend)
		default:
			text := s.resolveChoice(line)
			s.conv = append(s.conv, domain.ConversationTurn{Role: domain.RoleUser, Text: text})
			s.peerTurn(ctx, c, out)
			s.suggestTurn(ctx, c, out, "", domain.EntryPeerMsg)
		}
		if eof {
			return nil
		}
	}
}

// resolveChoice convierte "1".."3" en la sugerencia mostrada; cualquier otra cosa es texto literal.
func (s *chatSession) resolveChoice(line string) string {
	idx, err := strconv.Atoi(line)
	if err != nil || idx < 1 || idx > len(s.candidates) {
		return line
	}
	return s.candidates[idx-1].Text
}

func (s *chatSession) peerTurn(ctx context.Context, c *coach, out io.Writer) {
	resp := c.peer.Reply(ctx, domain.PeerReplyRequest{
		Conversation:   s.conv,
		Opponent:       s.opponent,
		PersonaWeights: s.weights,
		Scenario:       s.scenario,
	})
	s.conv = append(s.conv, domain.ConversationTurn{Role: domain.RolePeer, Text: resp.Text})
	fmt.Fprintf(out, "%s[Otro]%s %s\n", colorGreen, colorReset, resp.Text)
}

func (s *chatSession) suggestTurn(ctx context.Context, c *coach, out io.Writer, draft, entryType string) {
	resp := c.suggest.Suggest(ctx, domain.SuggestRequest{
		Conversation:   s.conv,
		Draft:          draft,
		EntryType:      entryType,
		PersonaWeights: s.weights,
		Scenario:       s.scenario,
	})
	s.candidates = resp.Candidates

	fmt.Fprintf(out, "%s[Tip]%s %s (relacion %d, %s)\n", colorYellow, colorReset, resp.Tip.Text, resp.Relationship.Index, resp.Relationship.Trend)
	for i, cand := range resp.Candidates {
		fmt.Fprintf(out, "  [%d] %s  %s(%s, %.2f)%s\n", i+1, cand.Text, colorCyan, cand.Risk, cand.Score, colorReset)
	}
	if resp.Safety.Blocked {
		fmt.Fprintf(out, "  ! borrador bloqueado: %s\n", strings.Join(resp.Safety.Notes, "; "))
	}
}
