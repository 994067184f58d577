package model

// Sectors is the fixed list of organisational units a ticket can concern.
var Sectors = []string{
	"CHEFIA",
	"EDIFICAÇÕES",
	"RECURSOS HUMANOS",
	"NAS PONTUAL",
	"NAS PATRIMÔNIO",
	"TUTORIA",
	"FINANCEIRO",
	"EDUCAÇÃO PROFISSIONAL",
	"NCPM",
	"EJA",
	"ESTRUTURA",
	"CPADS",
	"RH",
	"PEDAGÓGICO",
	"REDS",
	"SERE",
	"PROTOCOLO",
	"OUVIDORIA",
	"FORMADORES",
	"EDUCAÇÃO ESPECIAL",
}

func ValidSector(s string) bool {
	for _, v := range Sectors {
		if v == s {
			return true
		}
	}
	return false
}
