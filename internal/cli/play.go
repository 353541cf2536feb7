package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/services/session"
)

const playHelp = `Commands:
  start      start the game (host, lobby only)
  <n>        answer with option n
  rejoin     connect again after a dropped connection
  leave      leave the session`

func newJoinCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "join <pin>",
		Short: "Join a session with its pin",
		Long: `Join a running session and play along.

Without --name the logged-in account is used. Type 'help' once joined to
see the available commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := useGuest(name); err != nil {
				return err
			}

			p := newPlayer(output(cmd))
			app.Session.AddListener(p)
			if err := app.Session.JoinGame(cmd.Context(), args[0]); err != nil {
				return err
			}

			return p.loop(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Play as a guest with this nickname")

	return cmd
}

// player prints a live session and tells the loop when it is over
type player struct {
	out  *Output
	done chan error

	mu       sync.Mutex
	status   model.SessionStatus
	roster   string
	question int
}

func newPlayer(out *Output) *player {
	return &player{out: out, done: make(chan error, 1)}
}

var _ session.TickListener = (*player)(nil)

func (p *player) SessionChanged(proj model.Projection) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch proj.Status {
	case model.StatusLobby:
		r := rosterKey(proj.Players)
		if p.status == model.StatusLobby && r == p.roster {
			break
		}
		p.roster = r
		p.out.PrintEvent("lobby", proj)
	case model.StatusInProgress:
		if proj.CurrentQuestion == nil || proj.QuestionNumber == p.question {
			break
		}
		p.question = proj.QuestionNumber
		p.out.PrintEvent("question", proj)
	case model.StatusResults:
		if p.status != model.StatusResults {
			p.out.PrintEvent("results", proj)
			p.finish(nil)
		}
	}
	p.status = proj.Status
}

func (p *player) SessionAlert(err *model.SessionError) {
	p.finish(err)
}

func (p *player) SessionTick(remaining int) {
	if remaining%5 == 0 || remaining <= 3 {
		p.out.PrintEvent("tick", Countdown{Remaining: remaining})
	}
}

func (p *player) SessionTimeUp() {
	p.out.PrintEvent("time-up", "Time is up")
}

func (p *player) finish(err error) {
	select {
	case p.done <- err:
	default:
	}
}

// loop reads commands until the session ends, the context is cancelled or
// the player leaves. End of input keeps the session running.
func (p *player) loop(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-p.done:
			return err
		case err := <-app.Channel.Errors():
			p.out.PrintError(fmt.Errorf("%w (type 'rejoin' to connect again)", err))
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			leave, err := p.command(ctx, line)
			if err != nil {
				p.out.PrintError(err)
			}
			if leave {
				app.Session.ResetGame()
				return nil
			}
		}
	}
}

func (p *player) command(ctx context.Context, line string) (bool, error) {
	switch line {
	case "":
		return false, nil
	case "help":
		p.out.PrintMessage(playHelp)
		return false, nil
	case "leave", "quit":
		return true, nil
	case "start":
		return false, app.Session.StartGame(ctx)
	case "rejoin":
		return false, app.Session.Rejoin(ctx)
	}

	option, err := optionFor(app.Session.Projection(), line)
	if err != nil {
		return false, err
	}
	if err := app.Session.SubmitAnswer(ctx, option); err != nil {
		return false, err
	}
	p.out.PrintEvent("answer", fmt.Sprintf("Answered %q", option))
	return false, nil
}

// optionFor resolves an option number or the option text itself
func optionFor(proj model.Projection, input string) (string, error) {
	q := proj.CurrentQuestion
	if proj.Status != model.StatusInProgress || q == nil {
		return "", fmt.Errorf("unknown command %q, type 'help'", input)
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(q.Options) {
			return "", fmt.Errorf("%w: pick 1-%d", model.ErrUnknownOption, len(q.Options))
		}
		return q.Options[n-1].Text, nil
	}
	if q.HasOption(input) {
		return input, nil
	}
	return "", fmt.Errorf("%w: no option %q", model.ErrUnknownOption, input)
}

func rosterKey(players []model.Player) string {
	ids := make([]string, len(players))
	for i, pl := range players {
		ids[i] = pl.ID
	}
	return strings.Join(ids, ",")
}
