package model

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "aberto"
	TicketStatusInProgress TicketStatus = "em_atendimento"
	TicketStatusAwaitingOS TicketStatus = "aguardando_os"
	TicketStatusResolved   TicketStatus = "resolvido"
	TicketStatusCancelled  TicketStatus = "cancelado"
)

// TicketStatuses lists the whole status vocabulary in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusAwaitingOS,
	TicketStatusResolved,
	TicketStatusCancelled,
}

// Valid reports whether s belongs to the status vocabulary.
func (s TicketStatus) Valid() bool {
	for _, v := range TicketStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Closed reports whether the ticket can no longer be assigned.
func (s TicketStatus) Closed() bool {
	return s == TicketStatusResolved || s == TicketStatusCancelled
}

// CoerceStatus maps unknown or empty values to aberto.
func CoerceStatus(s string) TicketStatus {
	if st := TicketStatus(s); st.Valid() {
		return st
	}
	return TicketStatusOpen
}

type TicketType string

const (
	TicketTypePedagogical TicketType = "pedagogico"
	TicketTypeTechnical   TicketType = "tecnico"
)

func (t TicketType) Valid() bool {
	return t == TicketTypePedagogical || t == TicketTypeTechnical
}

// Profile mirrors an identity-provider subject. IsAdmin is only ever changed by
// another administrator (or the operator CLI); logins never touch it.
type Profile struct {
	ID        string    `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Email     *string   `gorm:"type:varchar(320)" json:"email"`
	FullName  *string   `gorm:"type:varchar(255)" json:"full_name"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is the name used in ticket rows and notification emails.
func (p *Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	if p.Email != nil && *p.Email != "" {
		return *p.Email
	}
	return p.ID
}

type Ticket struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	TicketNumber       int64        `gorm:"autoIncrement;uniqueIndex;not null" json:"ticket_number"`
	OwnerID            string       `gorm:"type:varchar(255);index;not null" json:"owner_id"`
	Titulo             *string      `gorm:"type:varchar(255)" json:"titulo"`
	Tipo               TicketType   `gorm:"type:varchar(32)" json:"tipo,omitempty"`
	Setor              string       `gorm:"type:varchar(64);not null" json:"setor"`
	Description        string       `gorm:"type:text;not null" json:"description"`
	Status             TicketStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	Solicitante        string       `gorm:"type:varchar(255);not null" json:"solicitante"`
	TecnicoResponsavel *string      `gorm:"type:varchar(255);index" json:"tecnico_responsavel"`
	CPF                *string      `gorm:"column:cpf;type:varchar(11)" json:"cpf"`
	RG                 *string      `gorm:"column:rg;type:varchar(32)" json:"rg"`
	IPMaquina          *string      `gorm:"column:ip_maquina;type:varchar(64)" json:"ip_maquina"`
	OSCelepar          *string      `gorm:"column:os_celepar;type:varchar(64)" json:"os_celepar"`
	CreatedAt          time.Time    `gorm:"index" json:"created_at"`
}

// Technician returns the assignee name, or "" when unassigned.
func (t Ticket) Technician() string {
	if t.TecnicoResponsavel == nil {
		return ""
	}
	return *t.TecnicoResponsavel
}

// StringPtr returns nil for blank strings so optional columns stay NULL.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
