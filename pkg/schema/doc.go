/*
Package schema implements the primitive type system used by parameter
contracts: string, integer, number, boolean, array, buffer, enum, object,
any, and "|"-delimited unions of these.

Types both validate and coerce: parser output is often still a raw string
("42", "true", "[1,2]"), and each Type knows how to turn raw input into its
canonical Go representation. Unions try alternatives left to right; the
first match wins.
*/
package schema
