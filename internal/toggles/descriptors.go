package toggles

var baseToggles = []Descriptor{
	{
		Key:         "OpenpilotEnabledToggle",
		Title:       "Enable openpilot",
		Description: "Use the openpilot system for adaptive cruise control and lane keep driver assistance. Your attention is required at all times to use this feature. Changing this setting takes effect when the car is powered off.",
		Icon:        "../assets/offroad/icon_openpilot.png",
	},
	{
		Key:         "IsLdwEnabled",
		Title:       "Enable Lane Departure Warnings",
		Description: "Receive alerts to steer back into the lane when your vehicle drifts over a detected lane line without a turn signal activated while driving over 31 mph (50 km/h).",
		Icon:        "../assets/offroad/icon_warning.png",
	},
	{
		Key:         "IsRHD",
		Title:       "Enable Right-Hand Drive",
		Description: "Allow openpilot to obey left-hand traffic conventions and perform driver monitoring on right driver seat.",
		Icon:        "../assets/offroad/icon_openpilot_mirrored.png",
	},
	{
		Key:         "IsMetric",
		Title:       "Use Metric System",
		Description: "Display speed in km/h instead of mph.",
		Icon:        "../assets/offroad/icon_metric.png",
	},
	{
		Key:         "RecordFront",
		Title:       "Record and Upload Driver Camera",
		Description: "Upload data from the driver facing camera and help improve the driver monitoring algorithm.",
		Icon:        "../assets/offroad/icon_monitoring.png",
	},
	{
		Key:         "EndToEndToggle",
		Title:       "\U0001f96c Disable use of lanelines (Alpha) \U0001f96c",
		Description: "In this mode openpilot will ignore lanelines and just drive how it thinks a human would.",
		Icon:        "../assets/offroad/icon_road.png",
	},
}

var navTime24h = Descriptor{
	Key:         "NavSettingTime24h",
	Title:       "Show ETA in 24h format",
	Description: "Use 24h format instead of am/pm",
	Icon:        "../assets/offroad/icon_metric.png",
}

var disableRadar = Descriptor{
	Key:         "DisableRadar",
	Title:       "openpilot Longitudinal Control",
	Description: "openpilot will disable the car's radar and will take over control of gas and brakes. Warning: this disables AEB!",
	Icon:        "../assets/offroad/icon_speed_limit.png",
}

// communityToggles follow the community panel order. DisableRadar lives in
// the main list only, behind DisableRadar_Allow.
var communityToggles = []Descriptor{
	{
		Key:         "LoggerEnabled",
		Title:       "Enable Logger / Uploader",
		Description: "This causes slow frame time on weak hardware.",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "UseLQR",
		Title:       "Enable LQR Lateral Control",
		Description: "For Linear Quadratic Ratio Control: Warning please run nTune after 15-20 miles of driving.",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "SteerLockout",
		Title:       "Enable More Than 90° for LKAS",
		Description: "This disables the max steer limit of 90°. SPAS does not apply to this. This will cause fault on certain cars that have a 90° limit on LKAS.",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "LowSpeedAlerts",
		Title:       "Enable Low Speed Alerts",
		Description: "Enables Low Speed alerts for cars with min steer speeds.",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "UseClusterSpeed",
		Title:       "Use Cluster Speed",
		Description: "Use cluster speed instead of wheel speed.",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "IsLdwsCar",
		Title:       "LDWS Only Car; No SCC",
		Description: "If your car only supports LDWS, turn it on.",
		Icon:        "../assets/offroad/icon_openpilot.png",
	},
	{
		Key:         "MadModeEnabled",
		Title:       "Enable HKG MAD mode",
		Description: "Openpilot will engage when turn cruise control on",
		Icon:        "../assets/offroad/icon_openpilot.png",
	},
	{
		Key:         "LaneChangeEnabled",
		Title:       "Enable Lane Change Assist",
		Description: "Perform assisted lane changes with openpilot by checking your surroundings for safety, activating the turn signal and gently nudging the steering wheel towards your desired lane. openpilot is not capable of checking if a lane change is safe. You must continuously observe your surroundings to use this feature.",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "AutoLaneChangeEnabled",
		Title:       "Enable Auto Lane Change Nudgeless",
		Description: "warnings: it is beta, be careful!!",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "NoMinLaneChangeSpeed",
		Title:       "Auto Lane Change At Any Speed",
		Description: "warnings: it is beta, be careful!!",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "KeepSteeringTurnSignals",
		Title:       "Keep Steering While Turn Signals",
		Description: "",
		Icon:        "../assets/offroad/icon_openpilot.png",
	},
	{
		Key:         "CustomLeadMark",
		Title:       "Use Custom Lead Mark",
		Description: "",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "SccSmootherSlowOnCurves",
		Title:       "Enable Slow On Curves",
		Description: "",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "SccSmootherSyncGasPressed",
		Title:       "Sync Set Speed On Gas Pressed",
		Description: "",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "StockNaviDecelEnabled",
		Title:       "Stock Navi Based Deceleration",
		Description: "Use the stock navi based deceleration for longcontrol",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "UseSMDPSHarness",
		Title:       "Use SMDPS Harness",
		Description: "Use of MDPS Harness to enable openpilot steering down to 0 MPH",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "WarningOverSpeedLimit",
		Title:       "Warning When Speeding",
		Description: "Warning when the current speed exceeds the speed limit.",
		Icon:        "../assets/offroad/icon_openpilot.png",
	},
	{
		Key:         "LongControlEnabled",
		Title:       "Enable HKG Long Control",
		Description: "warnings: it is beta, be careful!! Openpilot will control the speed of your car",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "RadarDisableEnabled",
		Title:       "Community Radar Disable",
		Description: "Leagacy Cars ONLY! : openpilot will disable the car's radar and will take over control of gas and brakes. Warning: this disables AEB!",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "spasEnabled",
		Title:       "Enable SPAS.",
		Description: "Enable Send Parking Assist Messages up to 38mph. Warning: It is beta, be careful!!",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "DynamicSpas",
		Title:       "Dynamic SPAS/LKAS Switch - !ALPHA!",
		Description: "Enable Send Parking Assist Messages depending on situation and factors. Will not switch to SPAS above 60mph; Will only hold SPAS above this speed if wheel is above an angle of |3|.  Warning: It is !ALPHA!, be careful!!",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "SpasMode",
		Title:       "LKAS or Disengage on SPAS Override",
		Description: "Switch to LKAS on Steering Pressed or Disengage on override torque. !ALPHA!",
		Icon:        "../assets/offroad/icon_road.png",
	},
	{
		Key:         "DisableOpFcw",
		Title:       "Disable Openpilot FCW",
		Description: "",
		Icon:        "../assets/offroad/icon_shell.png",
	},
	{
		Key:         "ShowDebugUI",
		Title:       "Show Debug UI",
		Description: "",
		Icon:        "../assets/offroad/icon_shell.png",
	},
	{
		Key:         "SPASDebug",
		Title:       "Enable SPAS Debugging.",
		Description: "This outputs OP SPAS State: (The state that op is calling MDPS to) and MDPS SPAS State: (The state MDPS is actually in)",
		Icon:        "../assets/offroad/icon_road.png",
	},
}
