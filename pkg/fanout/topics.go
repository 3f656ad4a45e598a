package fanout

// TopicAllVehicles carries every position update for fleet-wide consumers.
const TopicAllVehicles = "vehicles"

func TopicRoute(routeRef string) string {
	return "route:" + routeRef
}

func TopicVehicle(vehicleRef string) string {
	return "vehicle:" + vehicleRef
}

func TopicGuardian(guardianRef string) string {
	return "guardian:" + guardianRef
}
