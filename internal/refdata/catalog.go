// Package refdata holds the static reference data the move-out form is built
// from: branch records with their notification routing, and the enumerated
// option lists. The catalog is injected into services so tests can substitute
// a smaller one.
package refdata

import "github.com/GrupoSemah/salidasform/internal/constants"

// Branch is a storage location. Its email list is the delivery routing for
// move-out requests naming that branch.
type Branch struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Emails []string `json:"-"`
}

type Catalog struct {
	Branches          []Branch
	Banks             []string
	VacateReasons     []string
	GoodsDispositions []string

	// DefaultRecipient receives requests whose branch id is unknown.
	DefaultRecipient string
}

// Branch returns the branch record for id, or nil when the id is unknown.
func (c *Catalog) Branch(id string) *Branch {
	for i := range c.Branches {
		if c.Branches[i].ID == id {
			return &c.Branches[i]
		}
	}
	return nil
}

// ResolveRecipients maps a branch id to its display name and notification
// list. An unrecognized id falls back to the default organizational address
// rather than failing the submission.
func (c *Catalog) ResolveRecipients(branchID string) (name string, emails []string) {
	if b := c.Branch(branchID); b != nil {
		return b.Name, b.Emails
	}
	return "No especificada", []string{c.DefaultRecipient}
}

// HasVacateReason reports whether reason is one of the enumerated choices.
func (c *Catalog) HasVacateReason(reason string) bool {
	return contains(c.VacateReasons, reason)
}

// HasGoodsDisposition reports whether d is one of the enumerated choices.
func (c *Catalog) HasGoodsDisposition(d string) bool {
	return contains(c.GoodsDispositions, d)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Default returns the production catalog.
func Default() *Catalog {
	return &Catalog{
		Branches: []Branch{
			{ID: "vista-hermosa", Name: "Vista Hermosa", Emails: []string{"vista.hermosa@almacenajes.net", "callcenter2@almacenajes.net", "callcenter3@almacenajes.net"}},
			{ID: "rio-abajo", Name: "Rio Abajo", Emails: []string{"rio.abajo@almacenajes.net", "callcenter2@almacenajes.net", "callcenter3@almacenajes.net"}},
			{ID: "costa-del-este", Name: "Costa del Este", Emails: []string{"costa.este@almacenajes.net", "callcenter2@almacenajes.net", "callcenter3@almacenajes.net"}},
			{ID: "albrook", Name: "Albrook", Emails: []string{"albrook@almacenajes.net", "callcenter2@almacenajes.net", "callcenter3@almacenajes.net"}},
			{ID: "milla-8", Name: "Milla 8", Emails: []string{"milla8@almacenajes.net", "callcenter2@almacenajes.net", "callcenter3@almacenajes.net"}},
			{ID: "san-antonio", Name: "San Antonio", Emails: []string{"san.antonio@almacenajes.net", "callcenter2@almacenajes.net", "callcenter3@almacenajes.net"}},
			{ID: "tumba-muerto", Name: "Tumba Muerto", Emails: []string{"tumba.muerto@almacenajes.net", "callcenter2@almacenajes.net", "callcenter3@almacenajes.net"}},
			{ID: "colon", Name: "Colon", Emails: []string{"colon@almacenajes.net", "callcenter2@almacenajes.net", "callcenter3@almacenajes.net"}},
			{ID: "hato-montana", Name: "Hato Montaña", Emails: []string{"hato.montana@almacenajes.net", "callcenter2@almacenajes.net", "callcenter3@almacenajes.net"}},
			{ID: "gorgona", Name: "Gorgona", Emails: []string{"gorgona@almacenajes.net", "callcenter2@almacenajes.net", "callcenter3@almacenajes.net"}},
			{ID: "david", Name: "David", Emails: []string{"david@almacenajes.net", "callcenter2@almacenajes.net", "callcenter3@almacenajes.net"}},
		},
		Banks: []string{
			"Banco Nacional de Panamá",
			"Banco General",
			"Banistmo",
			"BAC Credomatic",
			"Banco Azteca",
			"Scotiabank",
			"Multibank",
			"Global Bank",
			"Credicorp Bank",
			"Banco Aliado",
			"Banco Delta",
			"Towerbank",
		},
		VacateReasons: []string{
			"Recibí nueva casa u oficina",
			"Quiero eliminar el gasto de arrendamiento",
			"Pertenencias eliminadas (por venta, donación o descarte)",
			"Pocas pertenencias para llenar el depósito",
			"Me cambié a otra sucursal",
			"Alquilé en otro Storage",
			"Disminución o cierre de actividad comercial",
			"Saldré del país indefinidamente",
		},
		GoodsDispositions: []string{
			"Pertenencias eliminadas (por venta, donación o descarte)",
			"Darle uso en un lugar propio",
			"Guardarlos en un lugar propio",
			"Guardarlos en otra sucursal",
			"Guardarlos en otro Storage",
		},
		DefaultRecipient: constants.DefaultRecipientEmail,
	}
}
