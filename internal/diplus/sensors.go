package diplus

// Sensor is one Di-Plus value we request. Di-Plus answers a template of the
// form "Key:{中文名}|..." by substituting each placeholder, so Key is echoed
// back verbatim and needs no translation when parsing.
type Sensor struct {
	Key         string
	ChineseName string
}

// Keys of the readings we consume.
const (
	KeyBatteryPercentage = "BatteryPercentage"
	KeyFuelPercentage    = "FuelPercentage"
	KeyRangeRemaining    = "RangeRemaining"
	KeySpeed             = "Speed"
	KeyMileage           = "Mileage"
	KeyChargeGunState    = "ChargeGunState"
	KeyChargePortCover   = "ChargePortCover"
)

// Sensors is the full poll set.
var Sensors = []Sensor{
	{KeyBatteryPercentage, "电量百分比"},
	{KeyFuelPercentage, "油量百分比"},
	{KeyRangeRemaining, "续航里程"},
	{KeySpeed, "车速"},
	{KeyMileage, "里程"},
	{KeyChargeGunState, "充电枪插枪状态"},
	{KeyChargePortCover, "充电口盖"},
}

// chargeGunConnected is the ChargeGunState value reported while a plug is
// inserted.
const chargeGunConnected = 2
