// Package export writes ionogram grids and archived scalings as Parquet
// files for analysis outside ionoview.
//
// Grids are written in long form, one row per sample, so that column
// stores and dataframes can filter by height or frequency without knowing
// the grid shape.
package export
