package services

import (
	"strings"

	"github.com/Soniti94/paseoslugo/internal/models"
)

var servicePackages = []models.ServicePackage{
	{ID: models.ServiceBasic, Name: "Paseo Básico", Price: 15.0, Duration: 30, Description: "Paseo de 30 minutos por el barrio"},
	{ID: models.ServiceStandard, Name: "Paseo Estándar", Price: 22.0, Duration: 60, Description: "Paseo de 1 hora con seguimiento GPS"},
	{ID: models.ServicePremium, Name: "Paseo Premium", Price: 30.0, Duration: 90, Description: "Paseo de 90 minutos con fotos y reporte"},
	{ID: models.ServiceSpecial, Name: "Cuidado Especial", Price: 25.0, Duration: 60, Description: "Para perros con necesidades especiales"},
}

func ServicePackages() []models.ServicePackage {
	out := make([]models.ServicePackage, len(servicePackages))
	copy(out, servicePackages)
	return out
}

// ParseServiceType accepts the canonical ids and their Spanish aliases.
func ParseServiceType(raw string) (models.ServiceType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "basic", "basico", "básico":
		return models.ServiceBasic, true
	case "standard", "estandar", "estándar":
		return models.ServiceStandard, true
	case "premium":
		return models.ServicePremium, true
	case "special", "especial":
		return models.ServiceSpecial, true
	default:
		return "", false
	}
}
