package ipc

import "github.com/nstehr/relic/relic-core/model"

// Message types. The stdio transport only ever produces TypeStep and only
// writes TypeActions; the socket transports carry all four.
const (
	TypeHello   = "hello"
	TypeAck     = "ack"
	TypeStep    = "step"
	TypeActions = "actions"
)

// HelloMessage identifies the player and fixes the episode configuration.
// Strategy optionally overrides the configured strategy for this session.
type HelloMessage struct {
	Player   string          `json:"player"`
	EnvCfg   model.EnvConfig `json:"env_cfg"`
	Strategy string          `json:"strategy,omitempty"`
}

// StepMessage is one timestep as the game kit sends it. Player and Info are
// present on every line from the kit, and are used to configure the agent
// when no hello was received.
type StepMessage struct {
	Obs                  model.Observation `json:"obs"`
	Step                 int               `json:"step"`
	RemainingOverageTime float64           `json:"remainingOverageTime"`
	Player               string            `json:"player,omitempty"`
	Info                 *StepInfo         `json:"info,omitempty"`
}

type StepInfo struct {
	EnvCfg *model.EnvConfig `json:"env_cfg,omitempty"`
}

// ActionsMessage is the per-step reply: exactly max_units triples.
type ActionsMessage struct {
	Action []model.Action `json:"action"`
}

type AckMessage struct {
	Status string `json:"status"`
}
