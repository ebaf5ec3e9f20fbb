package service

import (
	"strings"

	"cohort/pkg/model"
	"cohort/pkg/sanitizer"
)

func normalizeOrder(req model.OrderRequest) model.OrderRequest {
	req.RequesterName = sanitizer.NormalizeName(req.RequesterName)
	req.RequesterOrg = sanitizer.TrimAndNormalize(req.RequesterOrg)
	req.RequesterEmail = sanitizer.NormalizeEmail(req.RequesterEmail)
	req.RequesterPhone = sanitizer.NormalizePhone(req.RequesterPhone)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	return req
}

func normalizeRegistration(reg model.Registration) model.Registration {
	reg.OrganizationName = sanitizer.TrimAndNormalize(reg.OrganizationName)
	reg.ContactName = sanitizer.NormalizeName(reg.ContactName)
	reg.ContactEmail = sanitizer.NormalizeEmail(reg.ContactEmail)
	reg.ContactPhone = sanitizer.NormalizePhone(reg.ContactPhone)
	reg.Notes = sanitizer.NormalizeText(reg.Notes)

	if reg.Participants != nil {
		participants := make([]model.Participant, len(reg.Participants))
		for i, p := range reg.Participants {
			participants[i] = model.Participant{
				Name:  sanitizer.NormalizeName(p.Name),
				Email: sanitizer.NormalizeEmail(p.Email),
				Phone: sanitizer.NormalizePhone(p.Phone),
			}
		}
		reg.Participants = participants
	}
	return reg
}
