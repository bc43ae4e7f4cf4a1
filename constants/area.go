package constants

// DefaultArea is the organizational area stamped on every contract record.
// It is configuration, not an extracted field.
const DefaultArea = "SUBDIRECCIÓN DE PRODUCCIÓN REGIÓN NORTE GERENCIA DE MANTENIMIENTO CONFIABILIDAD Y CONSTRUCCIÓN"
