package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Contract is the declarative shape of the contratos table. The runtime
// repository manages the table with plain SQL; this schema documents it
// and feeds entc generation.
type Contract struct {
	ent.Schema
}

func (Contract) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "contratos"},
	}
}

func (Contract) Fields() []ent.Field {
	return []ent.Field{
		field.String("area").
			StorageKey("area").
			MaxLen(500).
			NotEmpty(),
		field.String("contract_number").
			StorageKey("numero_contrato").
			MaxLen(100).
			NotEmpty().
			Unique(),
		field.String("contractor").
			StorageKey("contratista").
			MaxLen(300).
			NotEmpty(),
		field.String("amount").
			StorageKey("monto_contrato").
			MaxLen(100).
			Optional(),
		field.String("term_days").
			StorageKey("plazo_dias").
			MaxLen(50).
			Optional(),
		field.Text("description").
			StorageKey("descripcion").
			Optional(),
		field.JSON("annexes", []string{}).
			StorageKey("anexos").
			Optional(),
		// file bytes live in a Postgres large object keyed by this OID
		field.Uint32("file_oid").
			StorageKey("lo_oid").
			SchemaType(map[string]string{dialect.Postgres: "oid"}),
		field.String("filename").
			StorageKey("nombre_archivo").
			MaxLen(300).
			NotEmpty(),
		field.String("content_type").
			StorageKey("tipo_archivo").
			MaxLen(50).
			Optional(),
		field.Int64("size_bytes").
			StorageKey("tamano_bytes").
			Positive(),
		field.String("hash_sha256").
			StorageKey("hash_sha256").
			MaxLen(64).
			NotEmpty(),
		field.Time("uploaded_at").
			StorageKey("fecha_subida").
			Default(time.Now),
		field.String("uploaded_by").
			StorageKey("usuario_subio").
			MaxLen(100).
			Default("sistema"),
	}
}

func (Contract) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("contract_number"),
		index.Fields("contractor"),
		index.Fields("area"),
		index.Fields("uploaded_at"),
	}
}
