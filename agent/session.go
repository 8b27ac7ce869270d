package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nstehr/relic/relic-core/ipc"
	"github.com/nstehr/relic/relic-core/model"
	"github.com/nstehr/relic/relic-core/rules"
)

// Session binds an Agent to one connection. The agent is created on the
// hello handshake or, for the kit's line protocol which has no handshake,
// on the first step that carries player and env_cfg.
type Session struct {
	Conn  *ipc.Connection
	opts  Options
	agent *Agent
}

func NewSession(conn *ipc.Connection, opts Options) *Session {
	return &Session{Conn: conn, opts: opts}
}

// Register installs the session's handlers on its connection.
func (s *Session) Register() {
	s.Conn.RegisterHandler(ipc.TypeHello, s.HandleHello)
	s.Conn.RegisterHandler(ipc.TypeStep, s.HandleStep)
}

// Agent is nil until the session is configured.
func (s *Session) Agent() *Agent { return s.agent }

func (s *Session) Close() error {
	if s.agent == nil {
		return nil
	}
	return s.agent.Close()
}

// HandleHello configures the agent, or switches its strategy when a hello
// arrives mid-episode.
func (s *Session) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	strategy := s.opts.Strategy
	if s.agent != nil {
		strategy = s.agent.Engine.Strategy()
	}
	if hello.Strategy != "" {
		if !rules.KnownStrategy(hello.Strategy) {
			return nil, fmt.Errorf("unknown strategy %q", hello.Strategy)
		}
		strategy.Name = hello.Strategy
	}

	if s.agent == nil {
		if err := s.configure(hello.Player, hello.EnvCfg, strategy); err != nil {
			return nil, err
		}
	} else if hello.Strategy != "" {
		if err := s.agent.Engine.Swap(strategy); err != nil {
			return nil, fmt.Errorf("swap strategy: %w", err)
		}
	}

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleStep answers every step with an action array. When the step cannot
// be used the reply is all no-ops of the configured length, returned
// together with the error, so the host still gets the arity it expects.
func (s *Session) HandleStep(env ipc.Envelope) (*ipc.Envelope, error) {
	if err := validateStep(env.Data); err != nil {
		return s.fallback(), err
	}

	var msg ipc.StepMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return s.fallback(), fmt.Errorf("unmarshal step: %w", err)
	}

	if s.agent == nil {
		if msg.Info == nil || msg.Info.EnvCfg == nil {
			return s.fallback(), ErrNotConfigured
		}
		if err := s.configure(msg.Player, *msg.Info.EnvCfg, s.opts.Strategy); err != nil {
			return s.fallback(), err
		}
	}

	actions, err := s.agent.Act(msg.Step, msg.Obs, msg.RemainingOverageTime)
	if err != nil {
		return s.fallback(), err
	}
	reply, err := ipc.NewEnvelope(ipc.TypeActions, ipc.ActionsMessage{Action: actions})
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (s *Session) configure(player string, cfg model.EnvConfig, strategy rules.Strategy) error {
	opts := s.opts
	opts.Strategy = strategy
	a, err := New(player, cfg, opts)
	if err != nil {
		return err
	}
	s.agent = a
	if s.Conn != nil {
		s.Conn.Player = player
	}
	return nil
}

func (s *Session) fallback() *ipc.Envelope {
	n := 0
	if s.agent != nil {
		n = s.agent.Config.MaxUnits
	}
	env, err := ipc.NewEnvelope(ipc.TypeActions, ipc.ActionsMessage{Action: model.NoOps(n)})
	if err != nil {
		slog.Error("failed to build fallback actions", "error", err)
		return nil
	}
	return &env
}
