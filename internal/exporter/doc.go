// Package exporter serializes a consolidated table.
//
// This package contains three main components:
//
// ExcelWriter: single-sheet .xlsx workbook written with the excelize stream
// writer, date index in column A and a bold header row.
//
// CSVWriter: the same layout as CSV, with an optional UTF-8 BOM for Excel
// compatibility.
//
// BuildPreview: the first rows of the table rendered as strings for display.
//
// Example usage:
//
//	exp := exporter.New(exporter.DefaultOptions(), logger)
//	data, err := exp.Bytes(table, exporter.FormatXLSX)
//	if err != nil {
//	    return err
//	}
//	name := exp.FileName(exporter.FormatXLSX) // acciones_consolidadas.xlsx
package exporter
