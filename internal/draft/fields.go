package draft

// Wire names of the editable listing fields. These match the persisted
// transport payload exactly and must not be renamed.
const (
	FieldListingType       = "listingType"
	FieldPropertyType      = "propertyType"
	FieldTitle             = "title"
	FieldDescription       = "description"
	FieldCity              = "city"
	FieldLocality          = "locality"
	FieldPincode           = "pincode"
	FieldAddress           = "address"
	FieldLandmark          = "landmark"
	FieldPrice             = "price"
	FieldPriceNegotiable   = "priceNegotiable"
	FieldMaintenanceCharge = "maintenanceCharge"
	FieldMaintenancePeriod = "maintenancePeriod"
	FieldSecurityDeposit   = "securityDeposit"
	FieldBuiltUpArea       = "builtUpArea"
	FieldCarpetArea        = "carpetArea"
	FieldBedrooms          = "bedrooms"
	FieldBathrooms         = "bathrooms"
	FieldBalconies         = "balconies"
	FieldTotalFloors       = "totalFloors"
	FieldFloorNumber       = "floorNumber"
	FieldPropertyAge       = "propertyAge"
	FieldFurnishing        = "furnishing"
	FieldFacing            = "facing"
	FieldAmenities         = "amenities"
	FieldOwnerName         = "ownerName"
	FieldPhoneNumber       = "phoneNumber"
	FieldEmail             = "email"
	FieldContactRole       = "contactRole"
	FieldReraNumber        = "reraNumber"
	FieldAvailableFrom     = "availableFrom"
	FieldStatus            = "status"
)

// Domain defaults applied when the source record leaves a field unset.
const (
	DefaultFurnishing        = "unfurnished"
	DefaultMaintenancePeriod = "monthly"
)
