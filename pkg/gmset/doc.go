//
// gmset is a client that interacts with a Grand Master Set collection server for sharing a collectible inventory.
//

// Create client
//
//	client, err := gmset.NewDefaultClient("https://grandmaster.nas.lan", accessKey)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Fetch a collection
//
//	collection, err := client.SelectCollection(ctx, "k3x9qa")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if collection == nil {
//		log.Fatal("collection not found")
//	}
//
//	items, err := client.SelectItems(ctx, collection.ID)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Follow the changes
//
//	sub, err := client.Subscribe(ctx, collection.ID)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sub.Close()
//
//	for event := range sub.Events() {
//		fmt.Println(event.Kind, event.Key())
//	}
//	if err = sub.Err(); err != nil {
//		log.Fatal(err)
//	}
//
// Import items
//
//	records := gmset.ParseImport(gmset.SplitLines(text), gmset.DefaultDefaults())
//	items := make([]gmset.Item, 0, len(records))
//	for _, record := range records {
//		items = append(items, record.Item(gmset.RandomIDs{}.ItemID(), collection.ID))
//	}
//
//	err = client.InsertItems(ctx, items) // All or nothing.
//	if err != nil {
//		log.Fatal(err)
//	}
package gmset
