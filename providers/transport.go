package providers

import "cosmos-pkn/models"

// TransporterCycle erzeugt die Kanten eines Transport-Vorgangs über ein
// Transporter-Protein: Metabolit im Quell-Kompartiment → Transporter →
// Metabolit im Cytosol, plus (wenn includeReverse) die explizite
// Rückrichtung mit Reverse == true. Alle vier Kanten teilen die gleiche
// ReactionID und bleiben durch das Reverse-Flag schlüssel-eindeutig.
func TransporterCycle(
	met, transporter models.Entity,
	otherComp string,
	reactionID, resource string,
	kind models.Kind,
	includeReverse bool,
) []models.Interaction {
	return TransporterCycleBetween(met, transporter, otherComp, "c", reactionID, resource, kind, includeReverse)
}

// TransporterCycleBetween ist die allgemeine Form für Quellen, die
// Transport zwischen zwei beliebigen Kompartimenten beschreiben
// (z.B. Recon3D: Mitochondrium → Cytosol). fromComp und toComp sind die
// Kompartimente des Metaboliten vor und nach dem Transport.
func TransporterCycleBetween(
	met, transporter models.Entity,
	fromComp, toComp string,
	reactionID, resource string,
	kind models.Kind,
	includeReverse bool,
) []models.Interaction {
	attrs := models.Attrs{
		TransportFrom: fromComp,
		TransportTo:   toComp,
	}
	recs := []models.Interaction{
		{
			Source:     met,
			Target:     transporter,
			ReactionID: reactionID,
			Mode:       models.ModeReaction,
			Kind:       kind,
			Directed:   true,
			Locations:  []string{fromComp},
			Attrs:      attrs,
			Resource:   resource,
		},
		{
			Source:     transporter,
			Target:     met,
			ReactionID: reactionID,
			Mode:       models.ModeReaction,
			Kind:       kind,
			Directed:   true,
			Locations:  []string{toComp},
			Attrs:      attrs,
			Resource:   resource,
		},
	}
	if !includeReverse {
		return recs
	}
	revAttrs := models.Attrs{
		TransportFrom: toComp,
		TransportTo:   fromComp,
	}
	return append(recs,
		models.Interaction{
			Source:     met,
			Target:     transporter,
			ReactionID: reactionID,
			Mode:       models.ModeReaction,
			Kind:       kind,
			Directed:   true,
			Reverse:    true,
			Locations:  []string{toComp},
			Attrs:      revAttrs,
			Resource:   resource,
		},
		models.Interaction{
			Source:     transporter,
			Target:     met,
			ReactionID: reactionID,
			Mode:       models.ModeReaction,
			Kind:       kind,
			Directed:   true,
			Reverse:    true,
			Locations:  []string{fromComp},
			Attrs:      revAttrs,
			Resource:   resource,
		},
	)
}
