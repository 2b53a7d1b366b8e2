package services

import (
	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/core/domain"
)

// IsNewAssignment reports whether an update hands equipment to a new holder.
// It fires only when the update itself sets status "In Use" together with a
// non-empty assignee name and employee e-mail, and the equipment was either
// not in use before or was held by someone else. Re-saving an unchanged
// assignment does not fire.
func IsNewAssignment(prev *models.Equipment, update *UpdateEquipmentInput) bool {
	if !update.Status.Present() || domain.EquipmentStatus(update.Status.Value) != domain.StatusInUse {
		return false
	}
	if !update.AssigneeName.Present() || update.AssigneeName.Value == "" {
		return false
	}
	if !update.EmployeeEmail.Present() || update.EmployeeEmail.Value == "" {
		return false
	}

	if prev.Status != domain.StatusInUse {
		return true
	}
	return prev.AssigneeName == nil || *prev.AssigneeName != update.AssigneeName.Value
}
