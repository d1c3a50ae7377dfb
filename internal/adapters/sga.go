package adapters

import (
	"strconv"
	"time"

	"github.com/otcheredev/call-panel-gateway/internal/models"
)

// sgaTimeLayouts are the dataChamada formats NovoSGA installations emit.
// Date-times without an offset are wall-clock times of the installation;
// bare dates are read as UTC midnight.
var sgaTimeLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02", false},
}

// SGAAdapter parses calls pushed by the NovoSGA queue manager. Location is
// the zone of offset-less call times; nil means the server's local zone.
type SGAAdapter struct {
	Location *time.Location
}

type sgaPayload struct {
	Senha       *sgaSenha      `json:"senha" validate:"required"`
	Local       *sgaLocal      `json:"local" validate:"required"`
	NumeroLocal *float64       `json:"numeroLocal" validate:"required"`
	Prioridade  *sgaPrioridade `json:"prioridade" validate:"required"`
	Usuario     *sgaUsuario    `json:"usuario"`
	DataChamada *string        `json:"dataChamada"`
}

type sgaSenha struct {
	Format *string `json:"format" validate:"required"`
}

type sgaLocal struct {
	Nome *string `json:"nome" validate:"required"`
}

type sgaPrioridade struct {
	Peso *float64 `json:"peso" validate:"required"`
}

type sgaUsuario struct {
	Login *string `json:"login" validate:"required"`
}

// Source returns the NovoSGA source tag
func (SGAAdapter) Source() string {
	return models.SourceNovoSGA
}

// Match checks for the senha and local objects every SGA call carries
func (SGAAdapter) Match(body map[string]interface{}) bool {
	return truthy(body["senha"]) && truthy(body["local"])
}

// Parse maps a NovoSGA payload. Ticket format becomes the display name.
func (a SGAAdapter) Parse(body map[string]interface{}, now time.Time) (*models.CallEntity, error) {
	var p sgaPayload
	if err := decodeAndValidate(a.Source(), body, &p); err != nil {
		return nil, err
	}

	call := &models.CallEntity{
		Name:        *p.Senha.Format,
		Destination: *p.Local.Nome + " " + strconv.FormatFloat(*p.NumeroLocal, 'f', -1, 64),
		Timestamp:   parseCallTime(p.DataChamada, a.location(), now),
		IsPriority:  *p.Prioridade.Peso > 0,
		RawSource:   a.Source(),
	}
	if p.Usuario != nil {
		call.Professional = *p.Usuario.Login
	}
	return call, nil
}

func (a SGAAdapter) location() *time.Location {
	if a.Location == nil {
		return time.Local
	}
	return a.Location
}

func parseCallTime(value *string, loc *time.Location, fallback time.Time) time.Time {
	if value == nil || *value == "" {
		return fallback
	}
	for _, l := range sgaTimeLayouts {
		zone := time.UTC
		if l.local {
			zone = loc
		}
		if t, err := time.ParseInLocation(l.layout, *value, zone); err == nil {
			return t
		}
	}
	return fallback
}
