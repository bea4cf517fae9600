// Package io provides JSON import and export for fitted dungeon maps.
//
// # JSON Format
//
// A [Document] holds the fitted layout and the dungeon graph it came from:
//
//	{
//	  "id": "0b6f...",
//	  "seed": 42,
//	  "fitter": "bfs",
//	  "rect": {"x": 0, "y": -1, "width": 32, "height": 21},
//	  "cells": [
//	    {"x": 0, "y": -1, "roomId": 0, "cellType": "CORRIDOR"},
//	    {"x": 0, "y": 0, "roomId": 1, "cellType": "ROOM"}
//	  ],
//	  "rooms": [
//	    {"id": 1, "shape": "STARTER", "dimensions": "20' x 20'"}
//	  ],
//	  "corridors": [
//	    {"from": 1, "to": 2, "lengthFeet": 30, "description": "To Chamber"}
//	  ]
//	}
//
// The rect, cells and rooms fields match the layout files written by earlier
// versions of the viewer, so those files load unchanged. rect and cells are
// absent when the dungeon has not been fitted. corridors lets a loaded
// dungeon be fitted again.
//
// # Loading
//
// [Document.Dungeon] rebuilds the room graph, keeping the stored room IDs.
// Unknown or missing shapes load as UNUSUAL. [Document.Grid] rebuilds the
// stored cells as-is so a saved layout can be drawn without re-fitting;
// unknown cell types load as EMPTY.
//
//	doc, err := io.ImportJSON("dungeon.json")
//	g, bounds := doc.Grid()
//	d, err := doc.Dungeon()
//
// # Saving
//
//	doc := io.NewDocument(d, res)
//	err := io.ExportJSON(doc, "dungeon.json")
//
// Output is indented with two spaces.
package io
