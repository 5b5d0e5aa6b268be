// Package fuzztests houses Go fuzz harnesses for the front of the catalog
// pipeline: the compound expression lexer and parser, and the whole
// decode -> classify -> resolve path on arbitrary TOML. Its goal is to guard
// against panics, hangs and broken spans on arbitrary inputs.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/expr, internal/catalog,
// internal/classify, internal/resolve, internal/diag, internal/testkit.
package fuzztests
