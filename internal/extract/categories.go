// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

// geometricCategories is the supported geometric category set. Extraction
// retains only these types; annotation and other non-geometric elements are
// silently skipped.
var geometricCategories = map[string]bool{
	// Structural elements.
	"IfcWall": true, "IfcWallStandardCase": true, "IfcCurtainWall": true,
	"IfcBeam": true, "IfcColumn": true, "IfcSlab": true, "IfcRoof": true,
	"IfcFooting": true, "IfcPile": true,
	"IfcStair": true, "IfcStairFlight": true, "IfcRamp": true, "IfcRampFlight": true,

	// Building elements.
	"IfcDoor": true, "IfcWindow": true, "IfcPlate": true, "IfcMember": true,
	"IfcCovering": true, "IfcRailing": true, "IfcBuildingElementProxy": true,

	// MEP elements.
	"IfcDuctSegment": true, "IfcDuctFitting": true, "IfcAirTerminal": true,
	"IfcPipeSegment": true, "IfcPipeFitting": true, "IfcFlowTerminal": true,
	"IfcCableCarrierSegment": true, "IfcCableCarrierFitting": true,
	"IfcCableSegment": true, "IfcDistributionElement": true,
	"IfcFlowController": true, "IfcFlowFitting": true, "IfcFlowMovingDevice": true,
	"IfcFlowStorageDevice": true, "IfcFlowTreatmentDevice": true,

	// Furniture and equipment.
	"IfcFurnishingElement": true, "IfcFurniture": true, "IfcSystemFurnitureElement": true,
}

// SupportedCategory reports whether elements of the given type tag carry
// geometry worth indexing.
func SupportedCategory(tag string) bool {
	return geometricCategories[tag]
}
