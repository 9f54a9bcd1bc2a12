package notification

import (
	"fmt"
	"strings"
)

func RequestCreated(userID, requestID, expediente string) Message {
	return Message{
		UserID:     userID,
		Kind:       KindRequestCreated,
		EntityType: EntityRequest,
		EntityID:   requestID,
		Title:      "Solicitud registrada",
		Message:    fmt.Sprintf("Su solicitud %s fue registrada y está pendiente de revisión.", expediente),
	}
}

// RequestStatusChanged describes an admin decision. memoURL is only set when
// the memo was stored.
func RequestStatusChanged(userID, requestID, expediente, status, comments, memoURL string) Message {
	msg := fmt.Sprintf("Su solicitud %s ha sido %s.", expediente, statusLabel(status))
	if c := strings.TrimSpace(comments); c != "" {
		msg += " Comentarios: " + c
	}
	if status == "aprobada" && memoURL == "" {
		msg += " El memorándum se generará en breve."
	}
	return Message{
		UserID:     userID,
		Kind:       KindRequestStatusChanged,
		EntityType: EntityRequest,
		EntityID:   requestID,
		Title:      "Actualización de solicitud",
		Message:    msg,
		LinkURL:    memoURL,
	}
}

func RequestApprovedViaComplaint(userID, requestID, expediente, memoURL string) Message {
	msg := fmt.Sprintf("Su solicitud %s fue aprobada tras la revisión de su reclamo.", expediente)
	if memoURL == "" {
		msg += " El memorándum se generará en breve."
	}
	return Message{
		UserID:     userID,
		Kind:       KindRequestApprovedViaComplaint,
		EntityType: EntityRequest,
		EntityID:   requestID,
		Title:      "Solicitud aprobada por reclamo",
		Message:    msg,
		LinkURL:    memoURL,
	}
}

func ComplaintFiled(userID, complaintID, expediente string) Message {
	msg := "Su reclamo fue registrado y será revisado por un administrador."
	if expediente != "" {
		msg = fmt.Sprintf("Su reclamo sobre la solicitud %s fue registrado y será revisado por un administrador.", expediente)
	}
	return Message{
		UserID:     userID,
		Kind:       KindComplaintFiled,
		EntityType: EntityComplaint,
		EntityID:   complaintID,
		Title:      "Reclamo registrado",
		Message:    msg,
	}
}

func ComplaintResolved(userID, complaintID, status, response string) Message {
	msg := fmt.Sprintf("Su reclamo ha sido %s.", statusLabel(status))
	if r := strings.TrimSpace(response); r != "" {
		msg += " Respuesta: " + r
	}
	return Message{
		UserID:     userID,
		Kind:       KindComplaintResolved,
		EntityType: EntityComplaint,
		EntityID:   complaintID,
		Title:      "Reclamo " + status,
		Message:    msg,
	}
}

func statusLabel(status string) string {
	switch status {
	case "aprobada":
		return "APROBADA"
	case "aprobado":
		return "APROBADO"
	case "rechazada":
		return "RECHAZADA"
	case "rechazado":
		return "RECHAZADO"
	case "pendiente":
		return "marcada como PENDIENTE"
	default:
		return status
	}
}
