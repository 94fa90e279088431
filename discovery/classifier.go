// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"strings"

	"github.com/jcodagnone/prospecta/prospect"
	"github.com/jcodagnone/prospecta/utils/textutils"
)

// termTypes maps a folded search term to the business type it targets. The
// term is the stronger signal: someone searched for "campo de futebol", so
// whatever came back is most likely a soccer venue.
var termTypes = map[string]prospect.ClientType{
	"campo de futebol":      prospect.TypeSoccerSchool,
	"quadra society":        prospect.TypeSportsClub,
	"escolinha de futebol":  prospect.TypeSoccerSchool,
	"condominio com quadra": prospect.TypeCondominium,
	"academia":              prospect.TypeCompany,
	"clube esportivo":       prospect.TypeSportsClub,
}

// Classify infers the business type of a candidate from the search term that
// found it, falling back to keywords in the candidate's own name. Both sides
// are accent-folded so "condomínio" and "condominio" classify alike.
func Classify(term, candidateName string) prospect.ClientType {
	if t, ok := termTypes[textutils.LowerASCIIFolding(term)]; ok {
		return t
	}

	folded := textutils.LowerASCIIFolding(candidateName)

	switch {
	case strings.Contains(folded, "condominio") || strings.Contains(folded, "residencial"):
		return prospect.TypeCondominium
	case strings.Contains(folded, "escola") || strings.Contains(folded, "escolinha"):
		return prospect.TypeSoccerSchool
	case strings.Contains(folded, "clube") || strings.Contains(folded, "associacao"):
		return prospect.TypeSportsClub
	default:
		return prospect.TypeOther
	}
}
